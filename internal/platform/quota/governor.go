package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/matchpulse/ingest/internal/platform/logging"
)

// ErrExhausted is returned before any network call once the window budget is
// spent. Callers must stop issuing provider calls for the rest of the window.
var ErrExhausted = errors.New("provider request quota exhausted")

type Window string

const (
	WindowDaily   Window = "daily"
	WindowMonthly Window = "monthly"
)

// Usage is a snapshot of the current window's budget.
type Usage struct {
	Used        int       `json:"used"`
	Remaining   int       `json:"remaining"`
	Total       int       `json:"total"`
	WindowStart time.Time `json:"window_start"`
}

// Store persists (window_start, used) so a process restart does not silently
// reset the local view of usage while the provider's true counter is unchanged.
type Store interface {
	Get(ctx context.Context, provider string) (windowStart time.Time, used int, found bool, err error)
	Save(ctx context.Context, provider string, windowStart time.Time, used int) error
}

type GovernorConfig struct {
	Provider string
	Ceiling  int
	Window   Window
	// CallsPerSecond sizes the token bucket that paces outbound calls below
	// the provider's burst limit. Zero disables pacing.
	CallsPerSecond float64
	Burst          int
	Store          Store
	Logger         *logging.Logger
	Now            func() time.Time
}

// Governor tracks a monotonically increasing request counter against a fixed
// per-window ceiling and paces successful acquisitions with a token bucket.
// It is the single owner of pacing policy: callers never sleep on their own.
type Governor struct {
	mu sync.Mutex

	provider    string
	ceiling     int
	window      Window
	used        int
	windowStart time.Time
	limiter     *rate.Limiter
	store       Store
	logger      *logging.Logger
	now         func() time.Time
}

func NewGovernor(cfg GovernorConfig) *Governor {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cfg.Ceiling < 0 {
		cfg.Ceiling = 0
	}
	window := cfg.Window
	if window != WindowMonthly {
		window = WindowDaily
	}

	var limiter *rate.Limiter
	if cfg.CallsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.CallsPerSecond), burst)
	}

	return &Governor{
		provider:    cfg.Provider,
		ceiling:     cfg.Ceiling,
		window:      window,
		windowStart: windowStart(window, now().UTC()),
		limiter:     limiter,
		store:       cfg.Store,
		logger:      logger,
		now:         now,
	}
}

// Hydrate loads the persisted counter for the current window. A stale row
// from an earlier window is discarded and the counter starts at zero.
func (g *Governor) Hydrate(ctx context.Context) error {
	if g.store == nil {
		return nil
	}

	persistedStart, used, found, err := g.store.Get(ctx, g.provider)
	if err != nil {
		return fmt.Errorf("load quota usage provider=%s: %w", g.provider, err)
	}
	if !found {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	current := windowStart(g.window, g.now().UTC())
	g.windowStart = current
	if persistedStart.UTC().Equal(current) {
		g.used = used
	}
	return nil
}

// Acquire charges one request against the window budget. It fails with
// ErrExhausted before waiting on the token bucket, so an exhausted budget
// never blocks and never reaches the network. The returned snapshot reflects
// the state after the charge.
func (g *Governor) Acquire(ctx context.Context) (Usage, error) {
	g.mu.Lock()
	g.rolloverLocked()
	if g.used >= g.ceiling {
		usage := g.usageLocked()
		g.mu.Unlock()
		return usage, fmt.Errorf("%w: provider=%s used=%d total=%d", ErrExhausted, g.provider, usage.Used, usage.Total)
	}
	g.mu.Unlock()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return g.Status(), err
		}
	}

	g.mu.Lock()
	g.rolloverLocked()
	if g.used >= g.ceiling {
		usage := g.usageLocked()
		g.mu.Unlock()
		return usage, fmt.Errorf("%w: provider=%s used=%d total=%d", ErrExhausted, g.provider, usage.Used, usage.Total)
	}
	g.used++
	usage := g.usageLocked()
	start := g.windowStart
	used := g.used
	g.mu.Unlock()

	g.persist(ctx, start, used)
	return usage, nil
}

// Status reports the current window budget without charging it.
func (g *Governor) Status() Usage {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rolloverLocked()
	return g.usageLocked()
}

// Remaining is a convenience for budget prechecks.
func (g *Governor) Remaining() int {
	return g.Status().Remaining
}

// Reset zeroes the counter for a fresh window. Normally the wall-clock
// rollover makes this unnecessary; it exists for operator-driven correction.
func (g *Governor) Reset(ctx context.Context) error {
	g.mu.Lock()
	g.used = 0
	g.windowStart = windowStart(g.window, g.now().UTC())
	start := g.windowStart
	g.mu.Unlock()

	if g.store == nil {
		return nil
	}
	if err := g.store.Save(ctx, g.provider, start, 0); err != nil {
		return fmt.Errorf("persist quota reset provider=%s: %w", g.provider, err)
	}
	return nil
}

func (g *Governor) rolloverLocked() {
	current := windowStart(g.window, g.now().UTC())
	if current.After(g.windowStart) {
		g.windowStart = current
		g.used = 0
	}
}

func (g *Governor) usageLocked() Usage {
	remaining := g.ceiling - g.used
	if remaining < 0 {
		remaining = 0
	}
	return Usage{
		Used:        g.used,
		Remaining:   remaining,
		Total:       g.ceiling,
		WindowStart: g.windowStart,
	}
}

func (g *Governor) persist(ctx context.Context, start time.Time, used int) {
	if g.store == nil {
		return
	}
	if err := g.store.Save(ctx, g.provider, start, used); err != nil {
		g.logger.WarnContext(ctx, "persist quota usage failed",
			"provider", g.provider,
			"used", used,
			"error", err,
		)
	}
}

func windowStart(window Window, now time.Time) time.Time {
	if window == WindowMonthly {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
