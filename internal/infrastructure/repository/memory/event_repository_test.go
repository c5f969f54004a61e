package memory

import (
	"context"
	"testing"
	"time"

	"github.com/matchpulse/ingest/internal/domain/event"
)

func TestEventRepository_ListActiveSinceLiveFamilyOnly(t *testing.T) {
	t.Parallel()

	repo := NewEventRepository()
	now := time.Now().UTC()
	seed := []event.Event{
		{ID: "e1", Sport: event.SportFootball, ExternalID: 601, Status: event.StatusLive, StartsAt: now.Add(-time.Hour)},
		{ID: "e2", Sport: event.SportFootball, ExternalID: 602, Status: "HT", StartsAt: now.Add(-45 * time.Minute)},
		{ID: "e3", Sport: event.SportFootball, ExternalID: 603, Status: event.StatusFinished, StartsAt: now.Add(-90 * time.Minute)},
		{ID: "e4", Sport: event.SportFootball, ExternalID: 604, Status: event.StatusScheduled, StartsAt: now.Add(-30 * time.Minute)},
		{ID: "e5", Sport: event.SportFootball, ExternalID: 605, Status: event.StatusCancelled, StartsAt: now.Add(-time.Hour)},
		{ID: "e6", Sport: event.SportFootball, ExternalID: 606, Status: event.StatusLive, StartsAt: now.Add(-8 * time.Hour)},
	}
	for _, item := range seed {
		if err := repo.Insert(context.Background(), item); err != nil {
			t.Fatalf("seed event %s: %v", item.ID, err)
		}
	}

	got, err := repo.ListActiveSince(context.Background(), now.Add(-6*time.Hour), 10)
	if err != nil {
		t.Fatalf("list active since: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected only in-window live-family events, got %d: %+v", len(got), got)
	}
	if got[0].ID != "e1" || got[1].ID != "e2" {
		t.Fatalf("expected e1 then e2 ordered by kickoff, got %s then %s", got[0].ID, got[1].ID)
	}
}

func TestEventRepository_ListActiveSinceHonorsLimit(t *testing.T) {
	t.Parallel()

	repo := NewEventRepository()
	now := time.Now().UTC()
	for i, id := range []string{"e1", "e2", "e3"} {
		item := event.Event{
			ID:         id,
			Sport:      event.SportFootball,
			ExternalID: int64(700 + i),
			Status:     event.StatusLive,
			StartsAt:   now.Add(-time.Duration(i+1) * time.Minute),
		}
		if err := repo.Insert(context.Background(), item); err != nil {
			t.Fatalf("seed event %s: %v", id, err)
		}
	}

	got, err := repo.ListActiveSince(context.Background(), now.Add(-time.Hour), 2)
	if err != nil {
		t.Fatalf("list active since: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit to cap results at 2, got %d", len(got))
	}
}
