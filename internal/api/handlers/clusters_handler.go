package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bookfinder/recommender/internal/api/response"
	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/recerrors"
)

// ClustersService defines the interface for browsing the clustered catalog.
type ClustersService interface {
	ListClusters(ctx context.Context) ([]models.ClusterSummary, error)
	ClusterBooks(ctx context.Context, clusterID int) (string, []models.Book, error)
}

// ClustersHandler handles HTTP requests for cluster browsing.
type ClustersHandler struct {
	service ClustersService
	logger  *slog.Logger
}

// NewClustersHandler creates a new clusters handler.
func NewClustersHandler(svc ClustersService, logger *slog.Logger) *ClustersHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ClustersHandler{service: svc, logger: logger}
}

// List handles GET /v1/clusters.
func (h *ClustersHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListClusters(r.Context())
	if err != nil {
		if errors.Is(err, recerrors.ErrDataNotReady) {
			response.RespondServiceUnavailable(w, "Cluster data is not ready yet")

			return
		}

		h.logger.ErrorContext(r.Context(), "list clusters failed", "error", err)
		response.RespondInternalServerError(w, "Failed to list clusters")

		return
	}

	response.RespondJSON(w, http.StatusOK, models.ListClustersResponse{
		Data:  summaries,
		Total: len(summaries),
	})
}

// Books handles GET /v1/clusters/{id}/books.
func (h *ClustersHandler) Books(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")

	clusterID, err := strconv.Atoi(idStr)
	if err != nil || clusterID < 0 {
		response.RespondBadRequest(w, "Invalid cluster ID")

		return
	}

	label, books, err := h.service.ClusterBooks(r.Context(), clusterID)
	if err != nil {
		if errors.Is(err, recerrors.ErrNotFound) {
			response.RespondNotFound(w, "Cluster not found")

			return
		}

		if errors.Is(err, recerrors.ErrDataNotReady) {
			response.RespondServiceUnavailable(w, "Cluster data is not ready yet")

			return
		}

		h.logger.ErrorContext(r.Context(), "cluster books failed", "error", err, "cluster_id", clusterID)
		response.RespondInternalServerError(w, "Failed to list cluster books")

		return
	}

	response.RespondJSON(w, http.StatusOK, models.ClusterBooksResponse{
		ClusterID: clusterID,
		Label:     label,
		Data:      books,
		Total:     len(books),
	})
}
