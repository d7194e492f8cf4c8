package httpapi

import (
	"fmt"
	"net/http"

	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

// RunCompleteMatchScoringJob drives the whole post-match pipeline for one
// match: auto-registration, aggregate recomputation, bonus award.
func (h *Handler) RunCompleteMatchScoringJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCompleteMatchScoringJob")
	defer span.End()

	matchID := r.PathValue("matchID")
	if matchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput))
		return
	}

	if err := h.scoringService.CompleteMatchScoring(ctx, matchID); err != nil {
		h.logger.ErrorContext(ctx, "complete match scoring job failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"status":  "completed",
		"matchId": matchID,
	})
}

// RunRecomputeScoresJob refreshes live aggregates mid-match without touching
// bonuses.
func (h *Handler) RunRecomputeScoresJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeScoresJob")
	defer span.End()

	matchID := r.PathValue("matchID")
	if matchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput))
		return
	}

	if err := h.scoringService.RecomputeForMatch(ctx, matchID); err != nil {
		h.logger.ErrorContext(ctx, "recompute scores job failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"status":  "recomputed",
		"matchId": matchID,
	})
}

// RunProcessQueueJob runs a formation pass over the waitlist, catching any
// batch missed by the join-time pass.
func (h *Handler) RunProcessQueueJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunProcessQueueJob")
	defer span.End()

	if err := h.queueService.ProcessQueue(ctx); err != nil {
		h.logger.ErrorContext(ctx, "process queue job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "processed"})
}
