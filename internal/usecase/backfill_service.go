package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/matchpulse/ingest/internal/domain/backfill"
	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/domain/rawdata"
	"github.com/matchpulse/ingest/internal/platform/logging"
	"github.com/matchpulse/ingest/internal/platform/quota"
)

type BackfillConfig struct {
	// Competitions maps competition name to the provider's league id.
	Competitions map[string]int64
	Seasons      []int
	// PacingInterval is the mandatory wait between auto-advanced phases. The
	// provider's burst limits are stricter than its daily ceiling.
	PacingInterval time.Duration
}

type PhaseStatus struct {
	Phase       backfill.Phase    `json:"phase"`
	StoredCount int               `json:"storedCount"`
	LastOutcome *backfill.Outcome `json:"lastOutcome,omitempty"`
}

type BackfillStatus struct {
	Quota  quota.Usage   `json:"quota"`
	Phases []PhaseStatus `json:"phases"`
}

type RunPhaseResult struct {
	Outcome        backfill.Outcome `json:"outcome"`
	NextPhaseIndex *int             `json:"nextPhaseIndex"`
}

type RunAllResult struct {
	Outcomes []backfill.Outcome `json:"outcomes"`
	Stopped  string             `json:"stopped,omitempty"`
}

// BackfillService decomposes historical import into ordered (competition,
// season) phases. Progress is derived from the store, not from memory, so a
// restart resumes by simply running the next un-started phase.
type BackfillService struct {
	plan        []backfill.Phase
	provider    FixtureProvider
	ingestion   *IngestionService
	eventRepo   event.Repository
	outcomeRepo backfill.Repository
	governor    *quota.Governor
	pacing      time.Duration
	logger      *logging.Logger
	now         func() time.Time
}

func NewBackfillService(
	cfg BackfillConfig,
	provider FixtureProvider,
	ingestion *IngestionService,
	eventRepo event.Repository,
	outcomeRepo backfill.Repository,
	governor *quota.Governor,
	logger *logging.Logger,
) *BackfillService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BackfillService{
		plan:        buildPlan(cfg),
		provider:    provider,
		ingestion:   ingestion,
		eventRepo:   eventRepo,
		outcomeRepo: outcomeRepo,
		governor:    governor,
		pacing:      cfg.PacingInterval,
		logger:      logger,
		now:         time.Now,
	}
}

// buildPlan expands seasons x competitions into a deterministic ordered list:
// seasons ascending, competitions alphabetical within a season.
func buildPlan(cfg BackfillConfig) []backfill.Phase {
	seasons := append([]int(nil), cfg.Seasons...)
	sort.Ints(seasons)

	names := make([]string, 0, len(cfg.Competitions))
	for name := range cfg.Competitions {
		names = append(names, name)
	}
	sort.Strings(names)

	plan := make([]backfill.Phase, 0, len(seasons)*len(names))
	for _, season := range seasons {
		for _, name := range names {
			plan = append(plan, backfill.Phase{
				Index:         len(plan),
				Competition:   name,
				CompetitionID: cfg.Competitions[name],
				Season:        season,
			})
		}
	}
	return plan
}

func (s *BackfillService) Plan() []backfill.Phase {
	return append([]backfill.Phase(nil), s.plan...)
}

// Status reports quota, the phase plan, and per-phase counts already in the
// store. The two store reads run concurrently; they are local reads, not
// provider calls, so the no-fan-out rule for outbound traffic is untouched.
func (s *BackfillService) Status(ctx context.Context) (BackfillStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.Status")
	defer span.End()

	var (
		counts     []event.GroupCount
		countsErr  error
		outcomes   []backfill.Outcome
		outcomeErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		counts, countsErr = s.eventRepo.GroupCountBySeason(ctx, event.SportFootball)
	})
	wg.Go(func() {
		outcomes, outcomeErr = s.outcomeRepo.ListOutcomes(ctx)
	})
	wg.Wait()

	if countsErr != nil {
		return BackfillStatus{}, fmt.Errorf("group counts: %w", countsErr)
	}
	if outcomeErr != nil {
		return BackfillStatus{}, fmt.Errorf("list outcomes: %w", outcomeErr)
	}

	countByKey := make(map[string]int, len(counts))
	for _, row := range counts {
		countByKey[row.Competition+"|"+row.Season] = row.Count
	}
	outcomeByKey := make(map[string]backfill.Outcome, len(outcomes))
	for _, outcome := range outcomes {
		outcomeByKey[outcome.PhaseKey] = outcome
	}

	phases := make([]PhaseStatus, 0, len(s.plan))
	for _, phase := range s.plan {
		status := PhaseStatus{
			Phase:       phase,
			StoredCount: countByKey[phase.Competition+"|"+phase.SeasonLabel()],
		}
		if outcome, ok := outcomeByKey[phase.Key()]; ok {
			status.LastOutcome = &outcome
		}
		phases = append(phases, status)
	}

	return BackfillStatus{Quota: s.governor.Status(), Phases: phases}, nil
}

// RunPhase executes one phase: quota precheck, fetch, per-event dedup/upsert.
// A phase-level fetch failure fails only this phase; later phases stay
// runnable.
func (s *BackfillService) RunPhase(ctx context.Context, index int) (RunPhaseResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.RunPhase")
	defer span.End()

	if index < 0 || index >= len(s.plan) {
		return RunPhaseResult{}, fmt.Errorf("%w: phase index %d out of range [0,%d)", ErrInvalidInput, index, len(s.plan))
	}
	phase := s.plan[index]

	if s.governor.Remaining() <= 0 {
		usage := s.governor.Status()
		return RunPhaseResult{}, fmt.Errorf("%w: used=%d total=%d", ErrQuotaExhausted, usage.Used, usage.Total)
	}

	outcome := backfill.Outcome{
		PhaseKey:    phase.Key(),
		Competition: phase.Competition,
		Season:      phase.SeasonLabel(),
		State:       backfill.StateRunning,
		StartedAt:   s.now().UTC(),
		TraceID:     traceIDFromContext(ctx),
	}
	s.persistOutcome(ctx, outcome)

	events, payload, err := s.provider.FetchFinishedFixtures(ctx, phase.CompetitionID, phase.Season)
	if err != nil {
		outcome.State = backfill.StateFailed
		outcome.ErrorMessage = err.Error()
		outcome.FinishedAt = ptrTime(s.now().UTC())
		s.persistOutcome(ctx, outcome)
		return RunPhaseResult{Outcome: outcome}, fmt.Errorf("phase %s: %w", phase.Key(), err)
	}

	ingest, err := s.ingestion.IngestBatch(ctx, events, payloadSlice(payload))
	if err != nil {
		outcome.State = backfill.StateFailed
		outcome.ErrorMessage = err.Error()
		outcome.FinishedAt = ptrTime(s.now().UTC())
		s.persistOutcome(ctx, outcome)
		return RunPhaseResult{Outcome: outcome}, fmt.Errorf("phase %s: %w", phase.Key(), err)
	}

	outcome.State = backfill.StateDone
	outcome.Imported = ingest.Imported
	outcome.Skipped = ingest.Skipped
	outcome.Errors = ingest.Errors
	outcome.FinishedAt = ptrTime(s.now().UTC())
	s.persistOutcome(ctx, outcome)

	s.logger.InfoContext(ctx, "backfill phase finished",
		"phase", phase.Key(),
		"imported", ingest.Imported,
		"skipped", ingest.Skipped,
		"errors", ingest.Errors,
	)

	result := RunPhaseResult{Outcome: outcome}
	if next := index + 1; next < len(s.plan) {
		result.NextPhaseIndex = &next
	}
	return result, nil
}

// RunAll auto-advances through the plan with the mandatory pacing interval
// between phases. Phases already recorded DONE are skipped; a failed phase is
// recorded and the run moves on; quota exhaustion stops the run.
func (s *BackfillService) RunAll(ctx context.Context) (RunAllResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.RunAll")
	defer span.End()

	done := map[string]bool{}
	if outcomes, err := s.outcomeRepo.ListOutcomes(ctx); err == nil {
		for _, outcome := range outcomes {
			if outcome.State == backfill.StateDone {
				done[outcome.PhaseKey] = true
			}
		}
	} else {
		s.logger.WarnContext(ctx, "list outcomes failed, running full plan", "error", err)
	}

	var result RunAllResult
	ranAny := false
	for index, phase := range s.plan {
		if done[phase.Key()] {
			continue
		}
		if ranAny {
			if err := s.pace(ctx); err != nil {
				result.Stopped = err.Error()
				return result, err
			}
		}

		phaseResult, err := s.RunPhase(ctx, index)
		if phaseResult.Outcome.PhaseKey != "" {
			result.Outcomes = append(result.Outcomes, phaseResult.Outcome)
		}
		ranAny = true
		switch {
		case err == nil:
		case stderrors.Is(err, ErrQuotaExhausted):
			result.Stopped = "quota exhausted"
			return result, err
		case ctx.Err() != nil:
			result.Stopped = "cancelled"
			return result, ctx.Err()
		default:
			// Phase-level failure aborts only that phase.
			s.logger.WarnContext(ctx, "backfill phase failed, continuing", "phase", phase.Key(), "error", err)
		}
	}
	return result, nil
}

// RunDailySync is the degenerate one-phase mode: yesterday's finished events.
func (s *BackfillService) RunDailySync(ctx context.Context) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.RunDailySync")
	defer span.End()

	if s.governor.Remaining() <= 0 {
		usage := s.governor.Status()
		return IngestResult{}, fmt.Errorf("%w: used=%d total=%d", ErrQuotaExhausted, usage.Used, usage.Total)
	}

	yesterday := s.now().UTC().AddDate(0, 0, -1)
	events, payload, err := s.provider.FetchFixturesByDate(ctx, yesterday, true)
	if err != nil {
		return IngestResult{}, fmt.Errorf("daily sync fetch: %w", err)
	}
	return s.ingestion.IngestBatch(ctx, events, payloadSlice(payload))
}

func (s *BackfillService) pace(ctx context.Context) error {
	if s.pacing <= 0 {
		return nil
	}
	timer := time.NewTimer(s.pacing)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *BackfillService) persistOutcome(ctx context.Context, outcome backfill.Outcome) {
	if s.outcomeRepo == nil {
		return
	}
	if err := s.outcomeRepo.UpsertOutcome(ctx, outcome); err != nil {
		s.logger.WarnContext(ctx, "persist phase outcome failed", "phase", outcome.PhaseKey, "error", err)
	}
}

func ptrTime(value time.Time) *time.Time {
	return &value
}

func payloadSlice(payload rawdata.Payload) []rawdata.Payload {
	if payload.Source == "" {
		return nil
	}
	return []rawdata.Payload{payload}
}
