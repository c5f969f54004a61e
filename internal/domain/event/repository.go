package event

import (
	"context"
	"time"
)

// GroupCount is one (competition, season) bucket with its stored event count.
// Backfill progress is derived from these rather than kept in memory.
type GroupCount struct {
	Competition string
	Season      string
	Count       int
}

// Repository exposes the point-lookup and write operations the ingestion
// pipeline needs from the store.
type Repository interface {
	GetByExternalID(ctx context.Context, sport string, externalID int64) (Event, bool, error)
	GetByFingerprint(ctx context.Context, sport string, fingerprint string) (Event, bool, error)
	Insert(ctx context.Context, item Event) error
	UpdateStatusScore(ctx context.Context, id string, status string, homeScore, awayScore *int) error
	GroupCountBySeason(ctx context.Context, sport string) ([]GroupCount, error)
	ListActiveSince(ctx context.Context, since time.Time, limit int) ([]Event, error)
}
