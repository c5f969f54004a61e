package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memoryStore struct {
	mu          sync.Mutex
	windowStart time.Time
	used        int
	found       bool
	saveCalls   int
}

func (s *memoryStore) Get(_ context.Context, _ string) (time.Time, int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windowStart, s.used, s.found, nil
}

func (s *memoryStore) Save(_ context.Context, _ string, windowStart time.Time, used int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windowStart = windowStart
	s.used = used
	s.found = true
	s.saveCalls++
	return nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestGovernor_ExhaustedFailsWithoutCharging(t *testing.T) {
	t.Parallel()

	governor := NewGovernor(GovernorConfig{
		Provider: "football",
		Ceiling:  2,
		Window:   WindowDaily,
		Now:      fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := governor.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}

	usage, err := governor.Acquire(ctx)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if usage.Used != 2 {
		t.Fatalf("exhausted acquire must not increment: used=%d", usage.Used)
	}
	if governor.Status().Used != 2 {
		t.Fatalf("status after exhausted acquire: used=%d", governor.Status().Used)
	}
}

func TestGovernor_UsageSnapshot(t *testing.T) {
	t.Parallel()

	governor := NewGovernor(GovernorConfig{
		Provider: "football",
		Ceiling:  100,
		Window:   WindowDaily,
		Now:      fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	})

	usage, err := governor.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if usage.Used != 1 || usage.Remaining != 99 || usage.Total != 100 {
		t.Fatalf("unexpected usage snapshot: %+v", usage)
	}
	if !usage.WindowStart.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window start: %v", usage.WindowStart)
	}
}

func TestGovernor_WallClockRollover(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)
	var mu sync.Mutex
	governor := NewGovernor(GovernorConfig{
		Provider: "football",
		Ceiling:  1,
		Window:   WindowDaily,
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return current
		},
	})

	ctx := context.Background()
	if _, err := governor.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := governor.Acquire(ctx); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected exhaustion before rollover, got %v", err)
	}

	mu.Lock()
	current = time.Date(2025, 3, 11, 0, 5, 0, 0, time.UTC)
	mu.Unlock()

	usage, err := governor.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire after rollover: %v", err)
	}
	if usage.Used != 1 {
		t.Fatalf("rollover must reset the counter: used=%d", usage.Used)
	}
}

func TestGovernor_MonthlyWindowStart(t *testing.T) {
	t.Parallel()

	governor := NewGovernor(GovernorConfig{
		Provider: "fights",
		Ceiling:  500,
		Window:   WindowMonthly,
		Now:      fixedClock(time.Date(2025, 3, 19, 12, 0, 0, 0, time.UTC)),
	})

	status := governor.Status()
	if !status.WindowStart.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected monthly window start: %v", status.WindowStart)
	}
}

func TestGovernor_HydrateFromStore(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store := &memoryStore{
		windowStart: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		used:        42,
		found:       true,
	}

	governor := NewGovernor(GovernorConfig{
		Provider: "football",
		Ceiling:  100,
		Window:   WindowDaily,
		Store:    store,
		Now:      fixedClock(at),
	})
	if err := governor.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if governor.Status().Used != 42 {
		t.Fatalf("hydrate must restore the persisted counter: used=%d", governor.Status().Used)
	}
}

func TestGovernor_HydrateDiscardsStaleWindow(t *testing.T) {
	t.Parallel()

	store := &memoryStore{
		windowStart: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		used:        42,
		found:       true,
	}

	governor := NewGovernor(GovernorConfig{
		Provider: "football",
		Ceiling:  100,
		Window:   WindowDaily,
		Store:    store,
		Now:      fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	})
	if err := governor.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if governor.Status().Used != 0 {
		t.Fatalf("stale window must hydrate to zero: used=%d", governor.Status().Used)
	}
}

func TestGovernor_AcquirePersistsCounter(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	governor := NewGovernor(GovernorConfig{
		Provider: "football",
		Ceiling:  10,
		Window:   WindowDaily,
		Store:    store,
		Now:      fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	})

	if _, err := governor.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.used != 1 || store.saveCalls != 1 {
		t.Fatalf("acquire must persist the counter: used=%d saves=%d", store.used, store.saveCalls)
	}
}

func TestGovernor_Reset(t *testing.T) {
	t.Parallel()

	governor := NewGovernor(GovernorConfig{
		Provider: "football",
		Ceiling:  1,
		Window:   WindowDaily,
		Now:      fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	})

	ctx := context.Background()
	if _, err := governor.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := governor.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if governor.Status().Used != 0 {
		t.Fatalf("reset must zero the counter: used=%d", governor.Status().Used)
	}
}
