package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookfinder/recommender/internal/catalog"
	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/recerrors"
)

type mockEmbeddingClient struct {
	embedFunc func(ctx context.Context, input string) ([]float32, error)
	calls     atomic.Int64
}

func (m *mockEmbeddingClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	m.calls.Add(1)
	if m.embedFunc != nil {
		return m.embedFunc(ctx, input)
	}

	return []float32{1, 0, 0}, nil
}

type mockCatalogProvider struct {
	data    *catalog.Data
	loadErr error
	calls   int
}

func (m *mockCatalogProvider) Load(_ context.Context) (*catalog.Data, error) {
	m.calls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}

	return m.data, nil
}

type stubExplainer struct{}

func (stubExplainer) Explain(_ context.Context, _ string, _ models.Book, similarity float64) models.Explanation {
	return models.Explanation{
		MatchScore: int(similarity * 100),
		Confidence: models.ConfidenceLow,
		Summary:    "stub",
	}
}

func testCatalog() *catalog.Data {
	return &catalog.Data{
		Books: []models.Book{
			{ID: "b1", Title: "Aligned"},
			{ID: "b2", Title: "Orthogonal"},
			{ID: "b3", Title: "Opposite"},
			{ID: "b4", Title: "Near"},
		},
		Embeddings: [][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{-1, 0, 0},
			{0.9, 0.1, 0},
		},
	}
}

func newTestService(t *testing.T, embedder *mockEmbeddingClient, provider *mockCatalogProvider) *RecommenderService {
	t.Helper()

	queryCache, err := lru.New[string, []float32](16)
	require.NoError(t, err)

	return NewRecommenderService(RecommenderServiceParams{
		EmbeddingClient: embedder,
		Provider:        provider,
		Explainer:       stubExplainer{},
		QueryCache:      queryCache,
	})
}

func TestRecommend_OrdersBySimilarity(t *testing.T) {
	svc := newTestService(t, &mockEmbeddingClient{}, &mockCatalogProvider{data: testCatalog()})

	recs, err := svc.Recommend(context.Background(), "space opera", 4)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	// Query embedding is {1,0,0}: exact match first, near match second.
	assert.Equal(t, "b1", recs[0].Book.ID)
	assert.InDelta(t, 1.0, recs[0].Score, 1e-6)
	assert.Equal(t, "b4", recs[1].Book.ID)

	// Orthogonal and opposite both clamp to score 0; index order breaks the tie.
	assert.Equal(t, "b2", recs[2].Book.ID)
	assert.Zero(t, recs[2].Score)
	assert.Equal(t, "b3", recs[3].Book.ID)
	assert.Zero(t, recs[3].Score)

	// Explanations are attached per item.
	assert.Equal(t, "stub", recs[0].Explanation.Summary)
	assert.Equal(t, 100, recs[0].Explanation.MatchScore)
}

func TestRecommend_TopNLimits(t *testing.T) {
	svc := newTestService(t, &mockEmbeddingClient{}, &mockCatalogProvider{data: testCatalog()})

	t.Run("zero uses default capped at catalog size", func(t *testing.T) {
		recs, err := svc.Recommend(context.Background(), "query", 0)
		require.NoError(t, err)
		assert.Len(t, recs, 4)
	})

	t.Run("explicit topN", func(t *testing.T) {
		recs, err := svc.Recommend(context.Background(), "query", 2)
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("topN above catalog size clamps", func(t *testing.T) {
		recs, err := svc.Recommend(context.Background(), "query", 50)
		require.NoError(t, err)
		assert.Len(t, recs, 4)
	})

	t.Run("negative topN rejected", func(t *testing.T) {
		_, err := svc.Recommend(context.Background(), "query", -1)
		assert.ErrorIs(t, err, ErrInvalidTopN)
	})

	t.Run("topN above maximum rejected", func(t *testing.T) {
		_, err := svc.Recommend(context.Background(), "query", 51)
		assert.ErrorIs(t, err, ErrInvalidTopN)
	})
}

func TestRecommend_EmptyQuery(t *testing.T) {
	svc := newTestService(t, &mockEmbeddingClient{}, &mockCatalogProvider{data: testCatalog()})

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := svc.Recommend(context.Background(), query, 3)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
}

func TestRecommend_DataNotReadyPropagates(t *testing.T) {
	provider := &mockCatalogProvider{loadErr: recerrors.NewDataNotReadyError("artifacts missing")}
	svc := newTestService(t, &mockEmbeddingClient{}, provider)

	_, err := svc.Recommend(context.Background(), "query", 3)
	assert.True(t, errors.Is(err, recerrors.ErrDataNotReady))
}

func TestRecommend_EmbeddingErrorPropagates(t *testing.T) {
	embedder := &mockEmbeddingClient{
		embedFunc: func(_ context.Context, _ string) ([]float32, error) {
			return nil, errors.New("provider down")
		},
	}
	svc := newTestService(t, embedder, &mockCatalogProvider{data: testCatalog()})

	_, err := svc.Recommend(context.Background(), "query", 3)
	assert.Error(t, err)
}

func TestRecommend_QueryEmbeddingCached(t *testing.T) {
	embedder := &mockEmbeddingClient{}
	svc := newTestService(t, embedder, &mockCatalogProvider{data: testCatalog()})

	_, err := svc.Recommend(context.Background(), "same query", 2)
	require.NoError(t, err)

	_, err = svc.Recommend(context.Background(), "same query", 2)
	require.NoError(t, err)

	assert.Equal(t, int64(1), embedder.calls.Load())
}

func TestRecommend_CatalogLoadedOnce(t *testing.T) {
	provider := &mockCatalogProvider{data: testCatalog()}
	svc := newTestService(t, &mockEmbeddingClient{}, provider)

	for i := 0; i < 3; i++ {
		_, err := svc.Recommend(context.Background(), "query", 1)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, provider.calls)
}

func TestRecommend_NormalizesQueryEmbedding(t *testing.T) {
	embedder := &mockEmbeddingClient{
		embedFunc: func(_ context.Context, _ string) ([]float32, error) {
			// Unnormalized vector pointing the same way as b1.
			return []float32{10, 0, 0}, nil
		},
	}
	svc := newTestService(t, embedder, &mockCatalogProvider{data: testCatalog()})

	recs, err := svc.Recommend(context.Background(), "query", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.InDelta(t, 1.0, recs[0].Score, 1e-6)
}
