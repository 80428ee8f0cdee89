package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookfinder/recommender/internal/api/response"
	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/recerrors"
	"github.com/bookfinder/recommender/internal/service"
)

// RecommendService defines the interface for serving recommendations.
type RecommendService interface {
	Recommend(ctx context.Context, query string, topN int) ([]models.Recommendation, error)
}

// RecommendHandler handles HTTP requests for book recommendations.
type RecommendHandler struct {
	service RecommendService
	logger  *slog.Logger
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(svc RecommendService, logger *slog.Logger) *RecommendHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecommendHandler{service: svc, logger: logger}
}

// Recommend handles POST /v1/recommendations.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	recommendations, err := h.service.Recommend(r.Context(), req.Query, req.TopN)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			response.RespondBadRequest(w, "query is required and must be non-empty")

			return
		}

		if errors.Is(err, service.ErrInvalidTopN) {
			response.RespondBadRequest(w, "top_n must be between 1 and 50")

			return
		}

		if errors.Is(err, recerrors.ErrDataNotReady) {
			response.RespondServiceUnavailable(w, "Recommendation data is not ready yet")

			return
		}

		h.logger.ErrorContext(r.Context(), "recommend request failed", "error", err)
		response.RespondInternalServerError(w, "Recommendation failed")

		return
	}

	response.RespondJSON(w, http.StatusOK, models.RecommendResponse{
		Query: req.Query,
		Data:  recommendations,
	})
}
