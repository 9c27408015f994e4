package httpapi

import "net/http"

func registerSystemRoutes(r *router, handler *Handler, metricsHandler http.Handler) {
	r.mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler == nil {
		return
	}

	r.mux.Handle("GET /metrics", metricsHandler)
}

func registerAuthorizedRoutes(r *router, handler *Handler, verifier TokenVerifier, recalcLimiter *principalLimiter) {
	r.handle("GET /v1/leagues/{leagueID}/weeks/{week}/stats", RequireAuth(verifier, http.HandlerFunc(handler.GetLeagueStats)))
	r.handle("GET /v1/leagues/{leagueID}/weeks/{week}/picks", RequireAuth(verifier, http.HandlerFunc(handler.GetPicks)))
	r.handle("PUT /v1/leagues/{leagueID}/weeks/{week}/picks", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPicks)))
	r.handle("POST /v1/scores/recalculate", RequireAuth(verifier, rateLimitByPrincipal(recalcLimiter, http.HandlerFunc(handler.RecalculateScores))))
}

func registerInternalJobRoutes(r *router, handler *Handler, internalJobToken string) {
	r.handle("POST /v1/internal/games/results", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ApplyGameResults)))
}
