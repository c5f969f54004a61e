package backfill

import "context"

type Repository interface {
	UpsertOutcome(ctx context.Context, outcome Outcome) error
	ListOutcomes(ctx context.Context) ([]Outcome, error)
}
