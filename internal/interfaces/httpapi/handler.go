package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/livescore/internal/domain/match"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/riskibarqy/livescore/internal/usecase"
)

type Handler struct {
	scores    *usecase.LiveScoreService
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(scores *usecase.LiveScoreService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scores:    scores,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type liveScoresRequest struct {
	Status string `validate:"omitempty,max=120"`
	Source string `validate:"omitempty,max=40"`
	League string `validate:"omitempty,max=120"`
}

type liveScoresData struct {
	GeneratedAtUTC string                            `json:"generated_at_utc"`
	Count          int                               `json:"count"`
	Matches        []match.Canonical                 `json:"matches"`
	Filters        usecase.ScoresFilters             `json:"filters"`
	Quality        usecase.QualitySummary            `json:"quality"`
	Providers      map[string]usecase.ProviderStatus `json:"providers"`
}

func (h *Handler) GetLiveScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLiveScores")
	defer span.End()

	query := r.URL.Query()
	request := liveScoresRequest{
		Status: strings.TrimSpace(query.Get("status")),
		Source: strings.TrimSpace(query.Get("source")),
		League: strings.TrimSpace(query.Get("league")),
	}
	if err := h.validateRequest(ctx, request); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scores.Scores(ctx, usecase.ScoresQuery{
		Status:           request.Status,
		Source:           request.Source,
		League:           request.League,
		IncludeStale:     boolParam(query, "include_stale"),
		IncludeConflicts: boolParam(query, "include_conflicts"),
		ForceRefresh:     boolParam(query, "refresh"),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "get live scores failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, liveScoresData{
		GeneratedAtUTC: result.GeneratedAtUTC,
		Count:          result.Count,
		Matches:        result.Matches,
		Filters:        result.Filters,
		Quality:        result.Quality,
		Providers:      result.Providers,
	})
}

// boolParam follows the lenient flag convention: a handful of truthy
// spellings, anything else is false.
func boolParam(query url.Values, name string) bool {
	switch strings.ToLower(strings.TrimSpace(query.Get(name))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
