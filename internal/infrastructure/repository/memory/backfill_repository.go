package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matchpulse/ingest/internal/domain/backfill"
)

type BackfillRepository struct {
	mu       sync.RWMutex
	outcomes map[string]backfill.Outcome
}

func NewBackfillRepository() *BackfillRepository {
	return &BackfillRepository{outcomes: make(map[string]backfill.Outcome)}
}

func (r *BackfillRepository) UpsertOutcome(_ context.Context, outcome backfill.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outcomes[outcome.PhaseKey] = outcome
	return nil
}

func (r *BackfillRepository) ListOutcomes(_ context.Context) ([]backfill.Outcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]backfill.Outcome, 0, len(r.outcomes))
	for _, outcome := range r.outcomes {
		out = append(out, outcome)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhaseKey < out[j].PhaseKey })
	return out, nil
}
