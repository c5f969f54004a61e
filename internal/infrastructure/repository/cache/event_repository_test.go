package cache

import (
	"context"
	"testing"
	"time"

	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/infrastructure/repository/memory"
)

type countingEventRepo struct {
	event.Repository
	groupCountCalls int
}

func (r *countingEventRepo) GroupCountBySeason(ctx context.Context, sport string) ([]event.GroupCount, error) {
	r.groupCountCalls++
	return r.Repository.GroupCountBySeason(ctx, sport)
}

func TestEventRepository_CachesGroupCounts(t *testing.T) {
	inner := &countingEventRepo{Repository: memory.NewEventRepository()}
	repo := NewEventRepository(inner, time.Minute)

	ctx := context.Background()
	seed := event.Event{
		ID:          "evt-1",
		Sport:       event.SportFootball,
		ExternalID:  101,
		HomeName:    "Arsenal",
		AwayName:    "Chelsea",
		StartsAt:    time.Date(2023, 9, 16, 14, 0, 0, 0, time.UTC),
		Status:      event.StatusFinished,
		Competition: "Premier League",
		Season:      "2023",
	}
	if err := repo.Insert(ctx, seed); err != nil {
		t.Fatalf("insert: %v", err)
	}

	for i := 0; i < 3; i++ {
		counts, err := repo.GroupCountBySeason(ctx, event.SportFootball)
		if err != nil {
			t.Fatalf("group counts: %v", err)
		}
		if len(counts) != 1 || counts[0].Count != 1 {
			t.Fatalf("unexpected counts: %+v", counts)
		}
	}
	if inner.groupCountCalls != 1 {
		t.Fatalf("expected one store read, got %d", inner.groupCountCalls)
	}
}

func TestEventRepository_InsertInvalidatesGroupCounts(t *testing.T) {
	inner := &countingEventRepo{Repository: memory.NewEventRepository()}
	repo := NewEventRepository(inner, time.Minute)

	ctx := context.Background()
	first := event.Event{
		ID:          "evt-1",
		Sport:       event.SportFootball,
		ExternalID:  101,
		HomeName:    "Arsenal",
		AwayName:    "Chelsea",
		StartsAt:    time.Date(2023, 9, 16, 14, 0, 0, 0, time.UTC),
		Status:      event.StatusFinished,
		Competition: "Premier League",
		Season:      "2023",
	}
	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := repo.GroupCountBySeason(ctx, event.SportFootball); err != nil {
		t.Fatalf("group counts: %v", err)
	}

	second := first
	second.ID = "evt-2"
	second.ExternalID = 102
	if err := repo.Insert(ctx, second); err != nil {
		t.Fatalf("insert: %v", err)
	}

	counts, err := repo.GroupCountBySeason(ctx, event.SportFootball)
	if err != nil {
		t.Fatalf("group counts: %v", err)
	}
	if len(counts) != 1 || counts[0].Count != 2 {
		t.Fatalf("expected refreshed count of 2, got %+v", counts)
	}
	if inner.groupCountCalls != 2 {
		t.Fatalf("expected second store read after invalidation, got %d", inner.groupCountCalls)
	}
}
