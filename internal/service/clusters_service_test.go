package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/recerrors"
)

type mockClusterSource struct {
	entry *models.ClusterCacheEntry
	err   error
}

func (m *mockClusterSource) GetClusters(_ context.Context) (*models.ClusterCacheEntry, error) {
	if m.err != nil {
		return nil, m.err
	}

	return m.entry, nil
}

func clusteredEntry() *models.ClusterCacheEntry {
	return &models.ClusterCacheEntry{
		Assignments: []int{0, 0, 2},
		Labels: map[int]string{
			0: "Fantasy Collection",
			1: "Empty Cluster 1",
			2: "Mystery Collection",
		},
		Books: []models.Book{
			{ID: "b1", Title: "A"},
			{ID: "b2", Title: "B"},
			{ID: "b3", Title: "C"},
		},
	}
}

func TestListClusters(t *testing.T) {
	svc := NewClustersService(&mockClusterSource{entry: clusteredEntry()}, nil)

	summaries, err := svc.ListClusters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.ClusterSummary{
		{ID: 0, Label: "Fantasy Collection", Size: 2},
		{ID: 1, Label: "Empty Cluster 1", Size: 0},
		{ID: 2, Label: "Mystery Collection", Size: 1},
	}, summaries)
}

func TestListClusters_SourceErrorPropagates(t *testing.T) {
	source := &mockClusterSource{err: recerrors.NewDataNotReadyError("not ready")}
	svc := NewClustersService(source, nil)

	_, err := svc.ListClusters(context.Background())
	assert.True(t, errors.Is(err, recerrors.ErrDataNotReady))
}

func TestClusterBooks(t *testing.T) {
	svc := NewClustersService(&mockClusterSource{entry: clusteredEntry()}, nil)

	t.Run("returns label and members", func(t *testing.T) {
		label, books, err := svc.ClusterBooks(context.Background(), 0)
		require.NoError(t, err)

		assert.Equal(t, "Fantasy Collection", label)
		require.Len(t, books, 2)
		assert.Equal(t, "b1", books[0].ID)
		assert.Equal(t, "b2", books[1].ID)
	})

	t.Run("empty cluster returns its label and no books", func(t *testing.T) {
		label, books, err := svc.ClusterBooks(context.Background(), 1)
		require.NoError(t, err)

		assert.Equal(t, "Empty Cluster 1", label)
		assert.Empty(t, books)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, _, err := svc.ClusterBooks(context.Background(), 9)
		assert.True(t, errors.Is(err, recerrors.ErrNotFound))
	})
}
