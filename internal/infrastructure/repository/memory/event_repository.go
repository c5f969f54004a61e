package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matchpulse/ingest/internal/domain/event"
)

// EventRepository is the in-memory store used when no database is configured.
// It mirrors the postgres repository's semantics, including identity lookups.
type EventRepository struct {
	mu     sync.RWMutex
	byID   map[string]event.Event
	sorted []string
}

func NewEventRepository() *EventRepository {
	return &EventRepository{byID: make(map[string]event.Event)}
}

func (r *EventRepository) GetByExternalID(_ context.Context, sport string, externalID int64) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.byID {
		if item.Sport == sport && item.ExternalID == externalID {
			return item, true, nil
		}
	}
	return event.Event{}, false, nil
}

func (r *EventRepository) GetByFingerprint(_ context.Context, sport string, fingerprint string) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.byID {
		if item.Sport == sport && item.Fingerprint == fingerprint {
			return item, true, nil
		}
	}
	return event.Event{}, false, nil
}

func (r *EventRepository) Insert(_ context.Context, item event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[item.ID]; !exists {
		r.sorted = append(r.sorted, item.ID)
	}
	r.byID[item.ID] = item
	return nil
}

func (r *EventRepository) UpdateStatusScore(_ context.Context, id string, status string, homeScore, awayScore *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[id]
	if !ok {
		return nil
	}
	item.Status = status
	item.HomeScore = homeScore
	item.AwayScore = awayScore
	item.UpdatedAt = time.Now().UTC()
	r.byID[id] = item
	return nil
}

func (r *EventRepository) GroupCountBySeason(_ context.Context, sport string) ([]event.GroupCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]*event.GroupCount)
	for _, item := range r.byID {
		if item.Sport != sport {
			continue
		}
		key := item.Competition + "|" + item.Season
		if counts[key] == nil {
			counts[key] = &event.GroupCount{Competition: item.Competition, Season: item.Season}
		}
		counts[key].Count++
	}

	out := make([]event.GroupCount, 0, len(counts))
	for _, row := range counts {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Competition != out[j].Competition {
			return out[i].Competition < out[j].Competition
		}
		return out[i].Season < out[j].Season
	})
	return out, nil
}

func (r *EventRepository) ListActiveSince(_ context.Context, since time.Time, limit int) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now().UTC()
	out := make([]event.Event, 0, limit)
	for _, id := range r.sorted {
		item := r.byID[id]
		if item.StartsAt.Before(since) || item.StartsAt.After(now) {
			continue
		}
		if !event.IsLiveStatus(item.Status) {
			continue
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
