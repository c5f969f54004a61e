package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/infrastructure/repository/memory"
	"github.com/matchpulse/ingest/internal/platform/logging"
)

type stubProber struct {
	mu       sync.Mutex
	byID     map[int64]event.Event
	probeErr map[int64]error
	calls    []int64
}

func (p *stubProber) FetchFixtureByID(_ context.Context, externalID int64) (event.Event, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, externalID)
	if err, ok := p.probeErr[externalID]; ok {
		return event.Event{}, false, err
	}
	item, ok := p.byID[externalID]
	return item, ok, nil
}

func score(v int) *int { return &v }

func newLiveSync(repo *stubEventRepo, prober *stubProber, ceiling int) *LiveSyncService {
	return NewLiveSyncService(
		LiveSyncConfig{Window: 6 * time.Hour, MaxProbes: 10},
		repo,
		prober,
		testGovernor(ceiling),
		logging.NewNop(),
	)
}

func TestSyncActive_WritesOnChange(t *testing.T) {
	t.Parallel()

	repo := newStubEventRepo()
	stored := event.Event{ID: "e1", Sport: event.SportFootball, ExternalID: 501, Status: event.StatusLive, HomeScore: score(0), AwayScore: score(0)}
	repo.byID["e1"] = stored
	repo.active = []event.Event{stored}

	prober := &stubProber{byID: map[int64]event.Event{
		501: {ExternalID: 501, Status: event.StatusLive, HomeScore: score(1), AwayScore: score(0)},
	}}
	service := newLiveSync(repo, prober, 10)

	result, err := service.SyncActive(context.Background())
	if err != nil {
		t.Fatalf("sync active: %v", err)
	}
	if result.Checked != 1 || result.Updated != 1 {
		t.Fatalf("expected one checked and one updated, got %+v", result)
	}
	if len(repo.updates) != 1 || *repo.updates[0].homeScore != 1 {
		t.Fatalf("score change must be written back: %+v", repo.updates)
	}
}

func TestSyncActive_NoWriteWhenUnchanged(t *testing.T) {
	t.Parallel()

	repo := newStubEventRepo()
	stored := event.Event{ID: "e1", Sport: event.SportFootball, ExternalID: 501, Status: event.StatusLive, HomeScore: score(1), AwayScore: score(1)}
	repo.byID["e1"] = stored
	repo.active = []event.Event{stored}

	prober := &stubProber{byID: map[int64]event.Event{
		501: {ExternalID: 501, Status: event.StatusLive, HomeScore: score(1), AwayScore: score(1)},
	}}
	service := newLiveSync(repo, prober, 10)

	result, err := service.SyncActive(context.Background())
	if err != nil {
		t.Fatalf("sync active: %v", err)
	}
	if result.Updated != 0 || len(repo.updates) != 0 {
		t.Fatalf("identical status and score must not write: %+v", result)
	}
}

func TestSyncActive_NeverRevertsFinished(t *testing.T) {
	t.Parallel()

	repo := newStubEventRepo()
	stored := event.Event{ID: "e1", Sport: event.SportFootball, ExternalID: 501, Status: event.StatusFinished, HomeScore: score(2), AwayScore: score(1)}
	repo.byID["e1"] = stored
	// A stuck row can still be inside the window while already finished.
	repo.active = []event.Event{stored}

	prober := &stubProber{byID: map[int64]event.Event{
		501: {ExternalID: 501, Status: event.StatusLive, HomeScore: score(1), AwayScore: score(1)},
	}}
	service := newLiveSync(repo, prober, 10)

	result, err := service.SyncActive(context.Background())
	if err != nil {
		t.Fatalf("sync active: %v", err)
	}
	if len(repo.updates) != 0 {
		t.Fatalf("stale live response must never revert a finished event: %+v", repo.updates)
	}
	if result.Updated != 0 {
		t.Fatalf("unexpected update count: %+v", result)
	}
}

func TestSyncActive_ProbeCapPassedToStore(t *testing.T) {
	t.Parallel()

	repo := newStubEventRepo()
	service := newLiveSync(repo, &stubProber{}, 10)

	if _, err := service.SyncActive(context.Background()); err != nil {
		t.Fatalf("sync active: %v", err)
	}
	if repo.lastLimit != 10 {
		t.Fatalf("probe cap must bound the candidate query, got limit=%d", repo.lastLimit)
	}
}

func TestSyncActive_SkipsFingerprintOnlyEvents(t *testing.T) {
	t.Parallel()

	repo := newStubEventRepo()
	repo.active = []event.Event{{ID: "e1", Sport: event.SportMMA, Fingerprint: "abc", Status: event.StatusLive}}
	prober := &stubProber{}
	service := newLiveSync(repo, prober, 10)

	result, err := service.SyncActive(context.Background())
	if err != nil {
		t.Fatalf("sync active: %v", err)
	}
	if result.Checked != 0 || len(prober.calls) != 0 {
		t.Fatalf("events without external id have no probe path: %+v", result)
	}
}

func TestSyncActive_StopsOnQuotaExhaustion(t *testing.T) {
	t.Parallel()

	repo := newStubEventRepo()
	repo.active = []event.Event{
		{ID: "e1", ExternalID: 501, Status: event.StatusLive},
		{ID: "e2", ExternalID: 502, Status: event.StatusLive},
	}
	prober := &stubProber{byID: map[int64]event.Event{}}
	service := newLiveSync(repo, prober, 0)

	_, err := service.SyncActive(context.Background())
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected quota exhaustion, got %v", err)
	}
	if len(prober.calls) != 0 {
		t.Fatalf("no probes allowed on an exhausted budget, calls=%v", prober.calls)
	}
}

func TestSyncActive_ProbeErrorCountsAndContinues(t *testing.T) {
	t.Parallel()

	repo := newStubEventRepo()
	first := event.Event{ID: "e1", Sport: event.SportFootball, ExternalID: 501, Status: event.StatusLive}
	second := event.Event{ID: "e2", Sport: event.SportFootball, ExternalID: 502, Status: event.StatusLive}
	repo.byID["e1"] = first
	repo.byID["e2"] = second
	repo.active = []event.Event{first, second}

	prober := &stubProber{
		byID:     map[int64]event.Event{502: {ExternalID: 502, Status: event.StatusFinished, HomeScore: score(2), AwayScore: score(0)}},
		probeErr: map[int64]error{501: errors.New("provider status=500")},
	}
	service := newLiveSync(repo, prober, 10)

	result, err := service.SyncActive(context.Background())
	if err != nil {
		t.Fatalf("sync active: %v", err)
	}
	if result.Checked != 2 || result.Errors != 1 || result.Updated != 1 {
		t.Fatalf("probe failure must not stop the sweep: %+v", result)
	}
}

func TestSyncActive_TerminalEventsNeverProbed(t *testing.T) {
	t.Parallel()

	repo := memory.NewEventRepository()
	now := time.Now().UTC()
	seed := []event.Event{
		{ID: "e1", Sport: event.SportFootball, ExternalID: 601, Status: event.StatusFinished, StartsAt: now.Add(-time.Hour)},
		{ID: "e2", Sport: event.SportFootball, ExternalID: 602, Status: event.StatusScheduled, StartsAt: now.Add(-30 * time.Minute)},
		{ID: "e3", Sport: event.SportFootball, ExternalID: 603, Status: "HT", StartsAt: now.Add(-45 * time.Minute)},
	}
	for _, item := range seed {
		if err := repo.Insert(context.Background(), item); err != nil {
			t.Fatalf("seed event %s: %v", item.ID, err)
		}
	}

	prober := &stubProber{byID: map[int64]event.Event{
		603: {ExternalID: 603, Status: "HT"},
	}}
	service := NewLiveSyncService(
		LiveSyncConfig{Window: 6 * time.Hour, MaxProbes: 10},
		repo,
		prober,
		testGovernor(10),
		logging.NewNop(),
	)

	result, err := service.SyncActive(context.Background())
	if err != nil {
		t.Fatalf("sync active: %v", err)
	}
	if result.Checked != 1 {
		t.Fatalf("only the live event should be checked, got %+v", result)
	}
	if len(prober.calls) != 1 || prober.calls[0] != 603 {
		t.Fatalf("probe budget must not be spent on finished or scheduled events: %v", prober.calls)
	}
}
