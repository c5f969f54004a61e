package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

type BreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func NormalizeBreakerConfig(cfg BreakerConfig) BreakerConfig {
	defaults := DefaultBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// Breaker guards a provider dependency. A rejected call never reaches the
// network and therefore never consumes request quota.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int

	state               BreakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
	halfOpenSuccesses   int
	now                 func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	cfg = NormalizeBreakerConfig(cfg)
	return &Breaker{
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		halfOpenMaxReq:   cfg.HalfOpenMaxReq,
		state:            BreakerClosed,
		now:              time.Now,
	}
}

func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state == BreakerOpen {
		if now.Sub(b.openedAt) < b.openTimeout {
			return ErrBreakerOpen
		}
		b.toHalfOpen()
	}

	if b.state == BreakerHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMaxReq {
			return ErrBreakerOpen
		}
		b.halfOpenInFlight++
	}

	return nil
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.consecutiveFailures = 0
	case BreakerHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.halfOpenMaxReq && b.halfOpenInFlight == 0 {
			b.toClosed()
		}
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.failureThreshold {
			b.toOpen()
		}
	case BreakerHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.toOpen()
	case BreakerOpen:
		b.openedAt = b.now()
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		if b.now().Sub(b.openedAt) >= b.openTimeout {
			return BreakerHalfOpen
		}
	}

	return b.state
}

func (b *Breaker) toClosed() {
	b.state = BreakerClosed
	b.consecutiveFailures = 0
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
	b.openedAt = time.Time{}
}

func (b *Breaker) toOpen() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}

func (b *Breaker) toHalfOpen() {
	b.state = BreakerHalfOpen
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}
