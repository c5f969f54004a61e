package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/matchpulse/ingest/internal/usecase"
)

const fightSyncTimeout = time.Hour

func (h *Handler) RunDailySyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDailySyncJob")
	defer span.End()

	result, err := h.backfillService.RunDailySync(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "daily sync job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSyncActiveJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncActiveJob")
	defer span.End()

	result, err := h.liveSyncService.SyncActive(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "sync active job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSyncFightsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncFightsJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job runner is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeSyncFightsRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	jobName := "fight-sync-" + strconv.Itoa(req.Year)
	err = h.jobs.TrySubmit(jobName, fightSyncTimeout, func(jobCtx context.Context) {
		result, runErr := h.fightSyncService.SyncYear(jobCtx, req.Year)
		if runErr != nil {
			h.logger.WarnContext(jobCtx, "fight sync stopped", "year", req.Year, "error", runErr)
			return
		}
		h.logger.InfoContext(jobCtx, "fight sync finished",
			"year", req.Year,
			"imported", result.Ingest.Imported,
			"skipped", result.Ingest.Skipped,
			"errors", result.Ingest.Errors,
		)
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    jobName,
	})
}

type syncFightsRequest struct {
	Year int `json:"year" validate:"required,min=1990,max=2100"`
}

func decodeSyncFightsRequest(r *http.Request) (syncFightsRequest, error) {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req syncFightsRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return syncFightsRequest{}, fmt.Errorf("%w: year is required", usecase.ErrInvalidInput)
		}
		return syncFightsRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
