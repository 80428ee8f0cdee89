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
)

// FeedbackService defines the interface for recording and listing feedback.
type FeedbackService interface {
	Create(ctx context.Context, req models.CreateFeedbackRequest) (*models.FeedbackEntry, error)
	List(ctx context.Context) ([]models.FeedbackEntry, error)
}

// FeedbackHandler handles HTTP requests for recommendation feedback.
type FeedbackHandler struct {
	service FeedbackService
	logger  *slog.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(svc FeedbackService, logger *slog.Logger) *FeedbackHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &FeedbackHandler{service: svc, logger: logger}
}

// Create handles POST /v1/feedback.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFeedbackRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	entry, err := h.service.Create(r.Context(), req)
	if err != nil {
		var validationErr *recerrors.ValidationError
		if errors.As(err, &validationErr) {
			response.RespondBadRequest(w, validationErr.Error())

			return
		}

		h.logger.ErrorContext(r.Context(), "create feedback failed", "error", err)
		response.RespondInternalServerError(w, "Failed to record feedback")

		return
	}

	response.RespondJSON(w, http.StatusCreated, entry)
}

// List handles GET /v1/feedback.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list feedback failed", "error", err)
		response.RespondInternalServerError(w, "Failed to list feedback")

		return
	}

	response.RespondJSON(w, http.StatusOK, models.ListFeedbackResponse{
		Data:  entries,
		Total: len(entries),
	})
}
