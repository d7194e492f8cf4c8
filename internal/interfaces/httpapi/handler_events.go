package httpapi

import (
	"fmt"
	"net/http"

	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

// Events upgrades the connection and streams pushed team events to the
// authenticated user.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Events")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	if h.events == nil {
		writeError(ctx, w, fmt.Errorf("%w: event stream is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	h.events.HandleConnection(w, r.WithContext(ctx), principal.UserID)
}
