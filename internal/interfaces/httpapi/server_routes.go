package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerInternalBackfillRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("GET /v1/internal/backfill/status", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.BackfillStatus)))
	mux.Handle("POST /v1/internal/backfill/run-phase", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunBackfillPhase)))
	mux.Handle("POST /v1/internal/backfill/run-all", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunBackfillAll)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/daily-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunDailySyncJob)))
	mux.Handle("POST /v1/internal/jobs/sync-active", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncActiveJob)))
	mux.Handle("POST /v1/internal/jobs/sync-fights", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncFightsJob)))
}
