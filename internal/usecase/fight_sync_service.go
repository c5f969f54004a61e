package usecase

import (
	"context"
	"fmt"

	"github.com/matchpulse/ingest/internal/platform/logging"
	"github.com/matchpulse/ingest/internal/platform/quota"
)

type FightSyncResult struct {
	Report CascadeReport `json:"report"`
	Ingest IngestResult  `json:"ingest"`
}

// FightSyncService pulls one year of combat-sport events through the
// provider's fallback cascade and ingests the merged result. The cascade
// diagnostics always ride along, even on partial failure.
type FightSyncService struct {
	provider  FightProvider
	ingestion *IngestionService
	governor  *quota.Governor
	logger    *logging.Logger
}

func NewFightSyncService(provider FightProvider, ingestion *IngestionService, governor *quota.Governor, logger *logging.Logger) *FightSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FightSyncService{
		provider:  provider,
		ingestion: ingestion,
		governor:  governor,
		logger:    logger,
	}
}

func (s *FightSyncService) SyncYear(ctx context.Context, year int) (FightSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FightSyncService.SyncYear")
	defer span.End()

	if year <= 0 {
		return FightSyncResult{}, fmt.Errorf("%w: year must be greater than zero", ErrInvalidInput)
	}
	if s.governor.Remaining() <= 0 {
		usage := s.governor.Status()
		return FightSyncResult{}, fmt.Errorf("%w: used=%d total=%d", ErrQuotaExhausted, usage.Used, usage.Total)
	}

	events, report, payloads, err := s.provider.CollectYear(ctx, year)
	result := FightSyncResult{Report: report}
	if err != nil && len(events) == 0 {
		return result, fmt.Errorf("collect fights year=%d: %w", year, err)
	}
	if err != nil {
		// Partial cascade (e.g. quota ran out mid-probes): ingest what we have
		// and surface the stop reason via the report.
		s.logger.WarnContext(ctx, "fight cascade stopped early, ingesting partial result", "year", year, "error", err)
	}

	ingest, ingestErr := s.ingestion.IngestBatch(ctx, events, payloads)
	if ingestErr != nil {
		return result, fmt.Errorf("ingest fights year=%d: %w", year, ingestErr)
	}
	result.Ingest = ingest

	s.logger.InfoContext(ctx, "fight sync finished",
		"year", year,
		"merged", report.Merged,
		"imported", ingest.Imported,
		"skipped", ingest.Skipped,
		"errors", ingest.Errors,
	)
	return result, nil
}
