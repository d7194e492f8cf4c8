package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

type renameTeamRequest struct {
	Name string `json:"name" validate:"required,min=2,max=30"`
}

func (h *Handler) GetMyTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	team, err := h.teamService.GetMyTeam(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get my team failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(team))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID := r.PathValue("teamID")
	team, err := h.teamService.GetTeamByID(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(team))
}

func (h *Handler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RenameTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req renameTeamRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	teamID := r.PathValue("teamID")
	team, err := h.teamService.Rename(ctx, teamID, principal.UserID, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "rename team failed", "team_id", teamID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(team))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	page, limit := parsePageParams(r)
	search := r.URL.Query().Get("search")

	teams, err := h.teamService.ListTeams(ctx, page, limit, search)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamPageToDTO(teams))
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Leaderboard")
	defer span.End()

	page, limit := parsePageParams(r)

	teams, err := h.teamService.Leaderboard(ctx, page, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamPageToDTO(teams))
}

func (h *Handler) TeamMatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TeamMatchHistory")
	defer span.End()

	teamID := r.PathValue("teamID")
	page, limit := parsePageParams(r)

	history, err := h.teamService.MatchHistory(ctx, teamID, page, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "team match history failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, historyPageToDTO(history))
}

func (h *Handler) RegisterTeamForMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterTeamForMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := r.PathValue("teamID")
	matchID := r.PathValue("matchID")

	team, err := h.teamService.GetTeamByID(ctx, teamID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !team.HasMember(principal.UserID) {
		writeError(ctx, w, fmt.Errorf("%w: only team members can register the team", usecase.ErrForbidden))
		return
	}

	perf, err := h.scoringService.RegisterForMatch(ctx, teamID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "register team for match failed",
			"team_id", teamID,
			"match_id", matchID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, performanceToDTO(perf))
}
