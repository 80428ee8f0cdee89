package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/recerrors"
)

// ClusterSource supplies the clustered catalog (the cluster cache).
type ClusterSource interface {
	GetClusters(ctx context.Context) (*models.ClusterCacheEntry, error)
}

// ClustersService exposes read operations over the clustered catalog for
// browsing: cluster listings and per-cluster book listings.
type ClustersService struct {
	source ClusterSource
	logger *slog.Logger
}

// NewClustersService creates a ClustersService. Logger may be nil.
func NewClustersService(source ClusterSource, logger *slog.Logger) *ClustersService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ClustersService{source: source, logger: logger}
}

// ListClusters returns all clusters ordered by id with their labels and sizes.
// Empty clusters are listed too; their size is 0.
func (s *ClustersService) ListClusters(ctx context.Context) ([]models.ClusterSummary, error) {
	entry, err := s.source.GetClusters(ctx)
	if err != nil {
		return nil, fmt.Errorf("get clusters: %w", err)
	}

	sizes := make(map[int]int, len(entry.Labels))
	for _, id := range entry.Assignments {
		sizes[id]++
	}

	summaries := make([]models.ClusterSummary, 0, len(entry.Labels))
	for id, label := range entry.Labels {
		summaries = append(summaries, models.ClusterSummary{
			ID:    id,
			Label: label,
			Size:  sizes[id],
		})
	}

	sort.Slice(summaries, func(a, b int) bool {
		return summaries[a].ID < summaries[b].ID
	})

	return summaries, nil
}

// ClusterBooks returns the label and member books of one cluster.
// Returns recerrors.ErrNotFound when the id has no label entry.
func (s *ClustersService) ClusterBooks(ctx context.Context, clusterID int) (string, []models.Book, error) {
	entry, err := s.source.GetClusters(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("get clusters: %w", err)
	}

	label, ok := entry.Labels[clusterID]
	if !ok {
		return "", nil, recerrors.NewNotFoundError("cluster", fmt.Sprintf("cluster %d not found", clusterID))
	}

	books := make([]models.Book, 0)
	for i, id := range entry.Assignments {
		if id == clusterID {
			books = append(books, entry.Books[i])
		}
	}

	return label, books, nil
}
