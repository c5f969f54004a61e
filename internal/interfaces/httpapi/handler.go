package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/matchpulse/ingest/internal/platform/logging"
	"github.com/matchpulse/ingest/internal/usecase"
)

type Handler struct {
	backfillService  *usecase.BackfillService
	liveSyncService  *usecase.LiveSyncService
	fightSyncService *usecase.FightSyncService
	jobs             *usecase.JobRunner
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	backfillService *usecase.BackfillService,
	liveSyncService *usecase.LiveSyncService,
	fightSyncService *usecase.FightSyncService,
	jobs *usecase.JobRunner,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		backfillService:  backfillService,
		liveSyncService:  liveSyncService,
		fightSyncService: fightSyncService,
		jobs:             jobs,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
