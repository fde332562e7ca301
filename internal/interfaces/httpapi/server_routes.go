package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /api/health", handler.Healthz)
}

func registerScoreRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/live-scores", handler.GetLiveScores)
	mux.HandleFunc("GET /live-scores", handler.GetLiveScores)
}
