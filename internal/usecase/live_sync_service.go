package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/platform/logging"
	"github.com/matchpulse/ingest/internal/platform/quota"
)

type LiveSyncConfig struct {
	// Window bounds how far back live-family events are re-probed. Without it
	// the poller would re-check stuck LIVE rows forever.
	Window time.Duration
	// MaxProbes caps provider calls per invocation.
	MaxProbes int
}

type SyncActiveResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// LiveSyncService re-checks in-progress events and writes back status/score
// changes. Read-modify only: it never creates events.
type LiveSyncService struct {
	eventRepo event.Repository
	prober    FixtureProber
	governor  *quota.Governor
	window    time.Duration
	maxProbes int
	logger    *logging.Logger
	now       func() time.Time
}

func NewLiveSyncService(
	cfg LiveSyncConfig,
	eventRepo event.Repository,
	prober FixtureProber,
	governor *quota.Governor,
	logger *logging.Logger,
) *LiveSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	window := cfg.Window
	if window <= 0 {
		window = 6 * time.Hour
	}
	maxProbes := cfg.MaxProbes
	if maxProbes <= 0 {
		maxProbes = 10
	}
	return &LiveSyncService{
		eventRepo: eventRepo,
		prober:    prober,
		governor:  governor,
		window:    window,
		maxProbes: maxProbes,
		logger:    logger,
		now:       time.Now,
	}
}

// SyncActive probes live-family events that started within the window, one
// provider call per event, sequentially. A write happens only when the
// observed status or score differs, and a FINISHED event is never reverted to
// an earlier state by a stale provider response.
func (s *LiveSyncService) SyncActive(ctx context.Context) (SyncActiveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveSyncService.SyncActive")
	defer span.End()

	var result SyncActiveResult
	since := s.now().UTC().Add(-s.window)
	candidates, err := s.eventRepo.ListActiveSince(ctx, since, s.maxProbes)
	if err != nil {
		return result, fmt.Errorf("list active events: %w", err)
	}

	for _, stored := range candidates {
		if stored.ExternalID <= 0 {
			// Fingerprint-only events have no provider lookup path.
			continue
		}
		if s.governor.Remaining() <= 0 {
			usage := s.governor.Status()
			return result, fmt.Errorf("%w: used=%d total=%d", ErrQuotaExhausted, usage.Used, usage.Total)
		}

		result.Checked++
		observed, found, err := s.prober.FetchFixtureByID(ctx, stored.ExternalID)
		if err != nil {
			result.Errors++
			s.logger.WarnContext(ctx, "live probe failed", "external_id", stored.ExternalID, "error", err)
			continue
		}
		if !found {
			continue
		}

		if !shouldWriteBack(stored, observed) {
			continue
		}
		if err := s.eventRepo.UpdateStatusScore(ctx, stored.ID, observed.Status, observed.HomeScore, observed.AwayScore); err != nil {
			result.Errors++
			s.logger.WarnContext(ctx, "live update failed", "event_id", stored.ID, "error", err)
			continue
		}
		result.Updated++
	}

	return result, nil
}

func shouldWriteBack(stored, observed event.Event) bool {
	// Monotonic status: a finished event never goes back to live or scheduled.
	if event.IsFinishedStatus(stored.Status) && !event.IsFinishedStatus(observed.Status) {
		return false
	}
	if stored.Status != observed.Status {
		return true
	}
	return !intPtrEqual(stored.HomeScore, observed.HomeScore) || !intPtrEqual(stored.AwayScore, observed.AwayScore)
}

func intPtrEqual(left, right *int) bool {
	if left == nil || right == nil {
		return left == right
	}
	return *left == *right
}
