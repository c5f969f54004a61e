package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matchpulse/ingest/internal/domain/backfill"
	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/domain/rawdata"
	"github.com/matchpulse/ingest/internal/platform/quota"
)

type stubEventRepo struct {
	mu           sync.Mutex
	byID         map[string]event.Event
	insertErrFor map[string]error
	active       []event.Event
	updates      []statusUpdate
	lastLimit    int
}

type statusUpdate struct {
	id        string
	status    string
	homeScore *int
	awayScore *int
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{byID: map[string]event.Event{}, insertErrFor: map[string]error{}}
}

func (r *stubEventRepo) GetByExternalID(_ context.Context, sport string, externalID int64) (event.Event, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.byID {
		if item.Sport == sport && item.ExternalID == externalID {
			return item, true, nil
		}
	}
	return event.Event{}, false, nil
}

func (r *stubEventRepo) GetByFingerprint(_ context.Context, sport string, fingerprint string) (event.Event, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.byID {
		if item.Sport == sport && item.Fingerprint == fingerprint {
			return item, true, nil
		}
	}
	return event.Event{}, false, nil
}

func (r *stubEventRepo) Insert(_ context.Context, item event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.insertErrFor[item.HomeName]; ok {
		return err
	}
	r.byID[item.ID] = item
	return nil
}

func (r *stubEventRepo) UpdateStatusScore(_ context.Context, id string, status string, homeScore, awayScore *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, statusUpdate{id: id, status: status, homeScore: homeScore, awayScore: awayScore})
	item := r.byID[id]
	item.Status = status
	item.HomeScore = homeScore
	item.AwayScore = awayScore
	r.byID[id] = item
	return nil
}

func (r *stubEventRepo) GroupCountBySeason(_ context.Context, sport string) ([]event.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]*event.GroupCount{}
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
	return out, nil
}

func (r *stubEventRepo) ListActiveSince(_ context.Context, _ time.Time, limit int) ([]event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	out := r.active
	if len(out) > limit {
		out = out[:limit]
	}
	return append([]event.Event(nil), out...), nil
}

func (r *stubEventRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type stubRawRepo struct {
	mu       sync.Mutex
	payloads []rawdata.Payload
}

func (r *stubRawRepo) UpsertMany(_ context.Context, payloads []rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payloads...)
	return nil
}

type stubOutcomeRepo struct {
	mu       sync.Mutex
	outcomes map[string]backfill.Outcome
}

func newStubOutcomeRepo() *stubOutcomeRepo {
	return &stubOutcomeRepo{outcomes: map[string]backfill.Outcome{}}
}

func (r *stubOutcomeRepo) UpsertOutcome(_ context.Context, outcome backfill.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome.PhaseKey] = outcome
	return nil
}

func (r *stubOutcomeRepo) ListOutcomes(_ context.Context) ([]backfill.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]backfill.Outcome, 0, len(r.outcomes))
	for _, outcome := range r.outcomes {
		out = append(out, outcome)
	}
	return out, nil
}

type stubFixtureProvider struct {
	mu           sync.Mutex
	byPhase      map[string][]event.Event
	byDate       map[string][]event.Event
	fetchErr     error
	seasonCalls  []string
	dateCalls    []string
	lastFinished bool
	// governor, when set, is charged per fetch like the real client does.
	governor *quota.Governor
}

func (p *stubFixtureProvider) FetchFinishedFixtures(ctx context.Context, leagueID int64, season int) ([]event.Event, rawdata.Payload, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := phaseCallKey(leagueID, season)
	p.seasonCalls = append(p.seasonCalls, key)
	if p.governor != nil {
		if _, err := p.governor.Acquire(ctx); err != nil {
			return nil, rawdata.Payload{}, err
		}
	}
	if p.fetchErr != nil {
		return nil, rawdata.Payload{}, p.fetchErr
	}
	return append([]event.Event(nil), p.byPhase[key]...), rawdata.Payload{Source: "footballapi", EntityKey: key}, nil
}

func (p *stubFixtureProvider) FetchFixturesByDate(_ context.Context, day time.Time, onlyFinished bool) ([]event.Event, rawdata.Payload, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := day.Format("2006-01-02")
	p.dateCalls = append(p.dateCalls, key)
	p.lastFinished = onlyFinished
	if p.fetchErr != nil {
		return nil, rawdata.Payload{}, p.fetchErr
	}
	return append([]event.Event(nil), p.byDate[key]...), rawdata.Payload{Source: "footballapi", EntityKey: key}, nil
}

func phaseCallKey(leagueID int64, season int) string {
	return fmt.Sprintf("%d:%d", leagueID, season)
}
