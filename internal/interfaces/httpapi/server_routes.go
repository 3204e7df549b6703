package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
	mux.HandleFunc("POST /v1/internal/cache/invalidate", handler.InvalidateCache)
}

func registerPredictionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players/{playerID}/prediction", handler.GetPlayerPrediction)
	mux.HandleFunc("GET /v1/players/{playerID}/metrics", handler.GetPlayerMetrics)
	mux.HandleFunc("GET /v1/teams/{teamID}/metrics", handler.GetTeamMetrics)
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}/context", handler.GetFixtureContext)
	mux.HandleFunc("POST /v1/transfers/recommendations", handler.RecommendTransfers)
}
