package httpapi

import (
	"fmt"
	"net/http"

	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

func (h *Handler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinQueue")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	result, err := h.queueService.Join(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "join queue failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Matched {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, queueJoinToDTO(result))
}

func (h *Handler) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveQueue")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	if err := h.queueService.Leave(ctx, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "leave queue failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "left"})
}

func (h *Handler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QueueStatus")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	status, err := h.queueService.Status(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "queue status failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queueStatusToDTO(status))
}
