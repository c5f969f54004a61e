package usecase

import (
	"context"
	"fmt"
	"time"

	ants "github.com/panjf2000/ants/v2"

	"github.com/matchpulse/ingest/internal/platform/logging"
)

// ErrRunInProgress rejects a trigger while a background run is still going.
var ErrRunInProgress = fmt.Errorf("a background run is already in progress")

// JobRunner executes operator-triggered jobs on a single background worker.
// The pool is deliberately sized to one: provider calls must stay sequential,
// and a second trigger while a run is active is rejected, not queued.
type JobRunner struct {
	pool   *ants.Pool
	logger *logging.Logger
}

func NewJobRunner(logger *logging.Logger) (*JobRunner, error) {
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := ants.NewPool(1, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create job pool: %w", err)
	}
	return &JobRunner{pool: pool, logger: logger}, nil
}

// TrySubmit schedules a named job. The job gets a fresh background context:
// it must outlive the HTTP request that triggered it.
func (r *JobRunner) TrySubmit(name string, timeout time.Duration, task func(ctx context.Context)) error {
	err := r.pool.Submit(func() {
		ctx := context.Background()
		cancel := func() {}
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, timeout)
		}
		defer cancel()

		started := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				r.logger.Error("background job panicked", "job", name, "panic", recovered)
			}
		}()

		r.logger.Info("background job started", "job", name)
		task(ctx)
		r.logger.Info("background job finished", "job", name, "duration", time.Since(started).String())
	})
	if err != nil {
		if err == ants.ErrPoolOverload {
			return ErrRunInProgress
		}
		return fmt.Errorf("submit job %s: %w", name, err)
	}
	return nil
}

func (r *JobRunner) Release() {
	r.pool.Release()
}
