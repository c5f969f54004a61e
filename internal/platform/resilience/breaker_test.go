package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(threshold int, openTimeout time.Duration, halfOpenMax int, clock func() time.Time) *Breaker {
	b := NewBreaker(BreakerConfig{
		FailureThreshold: threshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMax,
	})
	b.now = clock
	return b
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newTestBreaker(3, 10*time.Second, 1, func() time.Time { return at })

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("allow before open: %v", err)
		}
		b.RecordFailure()
	}

	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newTestBreaker(1, 10*time.Second, 1, func() time.Time { return at })

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}

	at = at.Add(11 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass: %v", err)
	}
	b.RecordSuccess()

	if got := b.State(); got != BreakerClosed {
		t.Fatalf("expected closed after probe success, got %s", got)
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newTestBreaker(1, 10*time.Second, 1, func() time.Time { return at })

	b.RecordFailure()
	at = at.Add(11 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open probe: %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("expected reopened breaker, got %v", err)
	}
}
