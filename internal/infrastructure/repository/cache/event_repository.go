package cache

import (
	"context"
	"time"

	"github.com/matchpulse/ingest/internal/domain/event"
	basecache "github.com/matchpulse/ingest/internal/platform/cache"
)

const groupCountPrefix = "event:group-counts:"

// EventRepository caches the per-(competition, season) group counts that the
// backfill status surface derives progress from. Point lookups and the live
// poller read path stay uncached; writes invalidate the counts.
type EventRepository struct {
	next  event.Repository
	cache *basecache.Store
}

func NewEventRepository(next event.Repository, ttl time.Duration) *EventRepository {
	return &EventRepository{next: next, cache: basecache.NewStore(ttl)}
}

func (r *EventRepository) GetByExternalID(ctx context.Context, sport string, externalID int64) (event.Event, bool, error) {
	return r.next.GetByExternalID(ctx, sport, externalID)
}

func (r *EventRepository) GetByFingerprint(ctx context.Context, sport string, fingerprint string) (event.Event, bool, error) {
	return r.next.GetByFingerprint(ctx, sport, fingerprint)
}

func (r *EventRepository) Insert(ctx context.Context, item event.Event) error {
	if err := r.next.Insert(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, groupCountPrefix)
	return nil
}

func (r *EventRepository) UpdateStatusScore(ctx context.Context, id string, status string, homeScore, awayScore *int) error {
	return r.next.UpdateStatusScore(ctx, id, status, homeScore, awayScore)
}

func (r *EventRepository) GroupCountBySeason(ctx context.Context, sport string) ([]event.GroupCount, error) {
	key := groupCountPrefix + sport
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.GroupCountBySeason(ctx, sport)
		if err != nil {
			return nil, err
		}
		return append([]event.GroupCount(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]event.GroupCount)
	return append([]event.GroupCount(nil), items...), nil
}

func (r *EventRepository) ListActiveSince(ctx context.Context, since time.Time, limit int) ([]event.Event, error) {
	return r.next.ListActiveSince(ctx, since, limit)
}
