package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/matchpulse/ingest/internal/usecase"
)

// backfillRunAllTimeout bounds a full auto-advanced run. Pacing between
// phases makes these runs long by design.
const backfillRunAllTimeout = 4 * time.Hour

func (h *Handler) BackfillStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BackfillStatus")
	defer span.End()

	status, err := h.backfillService.Status(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "backfill status failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, status)
}

func (h *Handler) RunBackfillPhase(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfillPhase")
	defer span.End()

	req, err := decodeRunPhaseRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.backfillService.RunPhase(ctx, req.PhaseIndex)
	if err != nil {
		h.logger.WarnContext(ctx, "run backfill phase failed", "phase_index", req.PhaseIndex, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunBackfillAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfillAll")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job runner is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	err := h.jobs.TrySubmit("backfill-run-all", backfillRunAllTimeout, func(jobCtx context.Context) {
		result, runErr := h.backfillService.RunAll(jobCtx)
		if runErr != nil {
			h.logger.WarnContext(jobCtx, "backfill run stopped",
				"phases_run", len(result.Outcomes),
				"stopped", result.Stopped,
				"error", runErr,
			)
			return
		}
		h.logger.InfoContext(jobCtx, "backfill run finished", "phases_run", len(result.Outcomes))
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    "backfill-run-all",
	})
}

type runPhaseRequest struct {
	PhaseIndex int `json:"phaseIndex" validate:"min=0"`
}

func decodeRunPhaseRequest(r *http.Request) (runPhaseRequest, error) {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req runPhaseRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return runPhaseRequest{}, nil
		}
		return runPhaseRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
