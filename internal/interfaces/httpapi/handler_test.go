package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/domain/rawdata"
	"github.com/matchpulse/ingest/internal/infrastructure/repository/memory"
	"github.com/matchpulse/ingest/internal/platform/logging"
	"github.com/matchpulse/ingest/internal/platform/quota"
	"github.com/matchpulse/ingest/internal/usecase"
)

const testToken = "job-token"

type fixtureProviderStub struct {
	events []event.Event
}

func (p *fixtureProviderStub) FetchFinishedFixtures(_ context.Context, _ int64, _ int) ([]event.Event, rawdata.Payload, error) {
	return p.events, rawdata.Payload{}, nil
}

func (p *fixtureProviderStub) FetchFixturesByDate(_ context.Context, _ time.Time, _ bool) ([]event.Event, rawdata.Payload, error) {
	return p.events, rawdata.Payload{}, nil
}

type proberStub struct{}

func (proberStub) FetchFixtureByID(_ context.Context, _ int64) (event.Event, bool, error) {
	return event.Event{}, false, nil
}

type fightProviderStub struct {
	block chan struct{}
}

func (p *fightProviderStub) CollectYear(ctx context.Context, _ int) ([]event.Event, usecase.CascadeReport, []rawdata.Payload, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
		}
	}
	return nil, usecase.CascadeReport{}, nil, nil
}

type routerFixture struct {
	router http.Handler
	fights *fightProviderStub
	jobs   *usecase.JobRunner
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	logger := logging.NewNop()
	governor := quota.NewGovernor(quota.GovernorConfig{Provider: "football", Ceiling: 100, Window: quota.WindowDaily})
	eventRepo := memory.NewEventRepository()
	ingestion := usecase.NewIngestionService(eventRepo, memory.NewRawDataRepository(), logger)

	kickoff := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	provider := &fixtureProviderStub{events: []event.Event{
		{Sport: event.SportFootball, ExternalID: 900, HomeName: "Arsenal", AwayName: "Chelsea", StartsAt: kickoff, Status: event.StatusFinished, Competition: "Premier League", Season: "2023"},
	}}

	backfillService := usecase.NewBackfillService(
		usecase.BackfillConfig{Competitions: map[string]int64{"Premier League": 39}, Seasons: []int{2023}},
		provider,
		ingestion,
		eventRepo,
		memory.NewBackfillRepository(),
		governor,
		logger,
	)
	liveSyncService := usecase.NewLiveSyncService(usecase.LiveSyncConfig{}, eventRepo, proberStub{}, governor, logger)

	fights := &fightProviderStub{}
	fightSyncService := usecase.NewFightSyncService(fights, ingestion, governor, logger)

	jobs, err := usecase.NewJobRunner(logger)
	if err != nil {
		t.Fatalf("create job runner: %v", err)
	}
	t.Cleanup(jobs.Release)

	handler := NewHandler(backfillService, liveSyncService, fightSyncService, jobs, logger)
	return &routerFixture{
		router: NewRouter(handler, logger, testToken),
		fights: fights,
		jobs:   jobs,
	}
}

func doRequest(router http.Handler, method, path, body string, withToken bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if withToken {
		req.Header.Set("X-Internal-Job-Token", testToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz_NoTokenRequired(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := doRequest(fixture.router, http.MethodGet, "/healthz", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBackfillStatus_RequiresToken(t *testing.T) {
	fixture := newRouterFixture(t)

	if rec := doRequest(fixture.router, http.MethodGet, "/v1/internal/backfill/status", "", false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec := doRequest(fixture.router, http.MethodGet, "/v1/internal/backfill/status", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data usecase.BackfillStatus `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if len(body.Data.Phases) != 1 {
		t.Fatalf("expected one phase in plan, got %d", len(body.Data.Phases))
	}
	if body.Data.Quota.Total != 100 {
		t.Fatalf("expected quota snapshot, got %+v", body.Data.Quota)
	}
}

func TestRunBackfillPhase_ReturnsOutcome(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := doRequest(fixture.router, http.MethodPost, "/v1/internal/backfill/run-phase", `{"phaseIndex":0}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data usecase.RunPhaseResult `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal run-phase result: %v", err)
	}
	if body.Data.Outcome.Imported != 1 {
		t.Fatalf("expected one imported event, got %+v", body.Data.Outcome)
	}
}

func TestRunBackfillPhase_OutOfRangeIsBadRequest(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := doRequest(fixture.router, http.MethodPost, "/v1/internal/backfill/run-phase", `{"phaseIndex":42}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRunSyncFightsJob_MissingYearIsBadRequest(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := doRequest(fixture.router, http.MethodPost, "/v1/internal/jobs/sync-fights", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRunSyncFightsJob_SecondTriggerConflicts(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.fights.block = make(chan struct{})
	defer close(fixture.fights.block)

	rec := doRequest(fixture.router, http.MethodPost, "/v1/internal/jobs/sync-fights", `{"year":2024}`, true)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	// The single worker is still blocked inside the first run.
	rec = doRequest(fixture.router, http.MethodPost, "/v1/internal/backfill/run-all", "", true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while a run is active, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRunDailySyncJob_ReturnsIngestResult(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := doRequest(fixture.router, http.MethodPost, "/v1/internal/jobs/daily-sync", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data usecase.IngestResult `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal daily sync result: %v", err)
	}
	if body.Data.Imported != 1 {
		t.Fatalf("expected one imported event, got %+v", body.Data)
	}
}

func TestRunSyncActiveJob_EmptyStore(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := doRequest(fixture.router, http.MethodPost, "/v1/internal/jobs/sync-active", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
