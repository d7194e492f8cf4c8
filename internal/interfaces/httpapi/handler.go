package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mapl11/fantasy-cricket/internal/platform/logging"
	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

// EventStream serves long-lived client connections for pushed team events.
type EventStream interface {
	HandleConnection(w http.ResponseWriter, r *http.Request, userID string)
}

type Handler struct {
	queueService   *usecase.QueueService
	teamService    *usecase.TeamService
	scoringService *usecase.TeamScoringService
	events         EventStream
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	queueService *usecase.QueueService,
	teamService *usecase.TeamService,
	scoringService *usecase.TeamScoringService,
	events EventStream,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Handler{
		queueService:   queueService,
		teamService:    teamService,
		scoringService: scoringService,
		events:         events,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// parsePageParams reads ?page= and ?limit= with zero defaults; the services
// normalize out-of-range values.
func parsePageParams(r *http.Request) (int, int) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(strings.TrimSpace(query.Get("page")))
	limit, _ := strconv.Atoi(strings.TrimSpace(query.Get("limit")))

	return page, limit
}
