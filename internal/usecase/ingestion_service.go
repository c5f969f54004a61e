package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/matchpulse/ingest/internal/domain/event"
	"github.com/matchpulse/ingest/internal/domain/rawdata"
	"github.com/matchpulse/ingest/internal/platform/logging"
)

const maxErrorSamples = 5

// IngestResult aggregates one batch: every record lands in exactly one bucket
// and nothing fails silently.
type IngestResult struct {
	Imported     int      `json:"imported"`
	Skipped      int      `json:"skipped"`
	Errors       int      `json:"errors"`
	ErrorSamples []string `json:"errorSamples,omitempty"`
}

func (r *IngestResult) addError(message string) {
	r.Errors++
	if len(r.ErrorSamples) < maxErrorSamples {
		r.ErrorSamples = append(r.ErrorSamples, message)
	}
}

// eventDraft is the shape gate for a candidate event. Adapters normalize
// defensively; this is the last check before a store write.
type eventDraft struct {
	Sport    string    `validate:"required,oneof=football mma"`
	HomeName string    `validate:"required"`
	AwayName string    `validate:"required"`
	Status   string    `validate:"required"`
	StartsAt time.Time `validate:"required"`
}

// IngestionService resolves identity, deduplicates, and inserts canonical
// events. A single record's failure never aborts the batch.
type IngestionService struct {
	eventRepo event.Repository
	rawRepo   rawdata.Repository
	validate  *validator.Validate
	logger    *logging.Logger
	now       func() time.Time
}

func NewIngestionService(eventRepo event.Repository, rawRepo rawdata.Repository, logger *logging.Logger) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		eventRepo: eventRepo,
		rawRepo:   rawRepo,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// IngestBatch upserts one provider batch in provider order. Duplicates count
// as skipped, shape failures and store failures count as errors, and the raw
// payloads are archived best-effort for diagnosis.
func (s *IngestionService) IngestBatch(ctx context.Context, events []event.Event, payloads []rawdata.Payload) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestBatch")
	defer span.End()

	var result IngestResult
	s.archivePayloads(ctx, payloads)

	for _, item := range events {
		item.HomeName = strings.TrimSpace(item.HomeName)
		item.AwayName = strings.TrimSpace(item.AwayName)
		item.Status = event.NormalizeStatus(item.Status)

		draft := eventDraft{
			Sport:    item.Sport,
			HomeName: item.HomeName,
			AwayName: item.AwayName,
			Status:   item.Status,
			StartsAt: item.StartsAt,
		}
		if err := s.validate.Struct(draft); err != nil {
			result.addError(fmt.Sprintf("shape check %s vs %s: %v", item.HomeName, item.AwayName, err))
			s.logger.WarnContext(ctx, "skip event failing shape check", "sport", item.Sport, "error", err)
			continue
		}

		duplicate, err := s.isDuplicate(ctx, item)
		if err != nil {
			result.addError(fmt.Sprintf("dedup lookup %s vs %s: %v", item.HomeName, item.AwayName, err))
			continue
		}
		if duplicate {
			result.Skipped++
			continue
		}

		now := s.now().UTC()
		item.ID = uuid.NewString()
		item.CreatedAt = now
		item.UpdatedAt = now
		if item.ExternalID <= 0 && item.Fingerprint == "" {
			item.Fingerprint = event.Fingerprint(item.HomeName, item.AwayName, item.StartsAt.Format("2006-01-02"))
		}

		if err := s.eventRepo.Insert(ctx, item); err != nil {
			result.addError(fmt.Sprintf("insert %s vs %s: %v", item.HomeName, item.AwayName, err))
			s.logger.WarnContext(ctx, "event insert failed", "home", item.HomeName, "away", item.AwayName, "error", err)
			continue
		}
		result.Imported++
	}

	return result, nil
}

func (s *IngestionService) isDuplicate(ctx context.Context, item event.Event) (bool, error) {
	identity := event.ResolveIdentity(item)
	switch identity.Kind {
	case event.IdentityExternalID:
		_, found, err := s.eventRepo.GetByExternalID(ctx, item.Sport, identity.ExternalID)
		return found, err
	default:
		_, found, err := s.eventRepo.GetByFingerprint(ctx, item.Sport, identity.Fingerprint)
		return found, err
	}
}

func (s *IngestionService) archivePayloads(ctx context.Context, payloads []rawdata.Payload) {
	if s.rawRepo == nil || len(payloads) == 0 {
		return
	}
	if err := s.rawRepo.UpsertMany(ctx, payloads); err != nil {
		s.logger.WarnContext(ctx, "archive raw payloads failed", "count", len(payloads), "error", err)
	}
}
