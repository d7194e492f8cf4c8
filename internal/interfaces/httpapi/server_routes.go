package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicTeamRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/leaderboard", handler.Leaderboard)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}/history", handler.TeamMatchHistory)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/teams/queue/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinQueue)))
	mux.Handle("DELETE /v1/teams/queue/leave", RequireAuth(verifier, http.HandlerFunc(handler.LeaveQueue)))
	mux.Handle("GET /v1/teams/queue/status", RequireAuth(verifier, http.HandlerFunc(handler.QueueStatus)))
	mux.Handle("GET /v1/teams/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyTeam)))
	mux.Handle("PUT /v1/teams/{teamID}/name", RequireAuth(verifier, http.HandlerFunc(handler.RenameTeam)))
	mux.Handle("POST /v1/teams/{teamID}/matches/{matchID}/register", RequireAuth(verifier, http.HandlerFunc(handler.RegisterTeamForMatch)))
	mux.Handle("GET /v1/ws", RequireAuth(verifier, http.HandlerFunc(handler.Events)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/matches/{matchID}/complete-scoring", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCompleteMatchScoringJob)))
	mux.Handle("POST /v1/internal/jobs/matches/{matchID}/recompute-scores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeScoresJob)))
	mux.Handle("POST /v1/internal/jobs/process-queue", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunProcessQueueJob)))
}
