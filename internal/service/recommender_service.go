// Package service contains the application services composing catalog data,
// embeddings, clustering, and explanations into the operations the API serves.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/bookfinder/recommender/internal/catalog"
	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/observability"
	"github.com/bookfinder/recommender/pkg/vectors"
)

const recommendQueryCacheName = "recommend_query_embedding"

// Defaults and bounds for the number of recommendations per request.
const (
	DefaultTopN = 5
	MaxTopN     = 50
)

// Sentinel errors for recommendations (used by handlers for status mapping).
var (
	ErrEmptyQuery  = errors.New("query is required and must be non-empty")
	ErrInvalidTopN = errors.New("top_n must be between 1 and 50")
)

// EmbeddingClient turns free text into an embedding vector (the black-box
// embed() collaborator).
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}

// Explainer builds the explanation object for one recommendation.
type Explainer interface {
	Explain(ctx context.Context, query string, book models.Book, similarity float64) models.Explanation
}

// CatalogProvider supplies the aligned catalog/embeddings snapshot.
type CatalogProvider interface {
	Load(ctx context.Context) (*catalog.Data, error)
}

// RecommenderService answers free-text queries with nearest-neighbor
// recommendations over the precomputed catalog embeddings, each carrying an
// explanation. The catalog snapshot is loaded once and treated as read-only
// for the process lifetime; query embeddings are cached with stampede
// protection.
type RecommenderService struct {
	embeddingClient EmbeddingClient
	provider        CatalogProvider
	explainer       Explainer
	queryCache      *lru.Cache[string, []float32]
	queryLoadGroup  singleflight.Group
	cacheMetrics    observability.CacheMetrics
	logger          *slog.Logger

	dataMu sync.Mutex
	data   *catalog.Data
}

// RecommenderServiceParams configures RecommenderService. QueryCache and
// CacheMetrics may be nil (no caching); Logger may be nil.
type RecommenderServiceParams struct {
	EmbeddingClient EmbeddingClient
	Provider        CatalogProvider
	Explainer       Explainer
	QueryCache      *lru.Cache[string, []float32]
	CacheMetrics    observability.CacheMetrics
	Logger          *slog.Logger
}

// NewRecommenderService creates a RecommenderService.
func NewRecommenderService(p RecommenderServiceParams) *RecommenderService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RecommenderService{
		embeddingClient: p.EmbeddingClient,
		provider:        p.Provider,
		explainer:       p.Explainer,
		queryCache:      p.QueryCache,
		cacheMetrics:    p.CacheMetrics,
		logger:          logger,
	}
}

// Recommend returns the topN best-matching books for query, each with an
// explanation. Requires a non-empty (after trim) query; topN of 0 uses the
// default. Returns recerrors.ErrDataNotReady (wrapped) when the catalog or
// embeddings artifacts are absent.
func (s *RecommenderService) Recommend(ctx context.Context, query string, topN int) ([]models.Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if topN == 0 {
		topN = DefaultTopN
	}

	if topN < 1 || topN > MaxTopN {
		return nil, ErrInvalidTopN
	}

	data, err := s.catalogData(ctx)
	if err != nil {
		return nil, err
	}

	embedding, err := s.queryEmbedding(ctx, query)
	if err != nil {
		s.logger.Error("recommend: create embedding failed", "error", err)

		return nil, fmt.Errorf("create embedding: %w", err)
	}

	queryVec := make([]float32, len(embedding))
	copy(queryVec, embedding)
	vectors.NormalizeL2(queryVec)

	if topN > len(data.Books) {
		topN = len(data.Books)
	}

	ranked := rankBySimilarity(queryVec, data.Embeddings, topN)

	recommendations := make([]models.Recommendation, 0, len(ranked))
	for _, r := range ranked {
		book := data.Books[r.index]
		recommendations = append(recommendations, models.Recommendation{
			Book:        book,
			Score:       r.score,
			Explanation: s.explainer.Explain(ctx, query, book, r.score),
		})
	}

	s.logger.Info("recommendations served", "query", query, "results", len(recommendations))

	return recommendations, nil
}

// catalogData loads the catalog snapshot once and memoizes it. Catalog
// embeddings are L2-normalized in place on first load so per-query similarity
// reduces to a dot product.
func (s *RecommenderService) catalogData(ctx context.Context) (*catalog.Data, error) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	if s.data != nil {
		return s.data, nil
	}

	data, err := s.provider.Load(ctx)
	if err != nil {
		return nil, err
	}

	for _, emb := range data.Embeddings {
		vectors.NormalizeL2(emb)
	}

	s.data = data

	return data, nil
}

type rankedItem struct {
	index int
	score float64
}

// rankBySimilarity scores every catalog embedding against the normalized
// query vector and returns the topN items, highest first. Ties break on the
// lower catalog index so results are deterministic. Negative cosine values
// clamp to 0: the similarity score feeds match_score and confidence, which
// are defined on [0, 1].
func rankBySimilarity(queryVec []float32, embeddings [][]float32, topN int) []rankedItem {
	ranked := make([]rankedItem, len(embeddings))
	for i, emb := range embeddings {
		score := dotProduct(queryVec, emb)
		if score < 0 {
			score = 0
		}

		ranked[i] = rankedItem{index: i, score: score}
	}

	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}

		return ranked[a].index < ranked[b].index
	})

	return ranked[:topN]
}

func dotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}

	return sum
}

func (s *RecommenderService) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if s.queryCache == nil {
		return s.embeddingClient.CreateEmbedding(ctx, query)
	}

	if vec, ok := s.queryCache.Get(query); ok {
		if s.cacheMetrics != nil {
			s.cacheMetrics.RecordHit(ctx, recommendQueryCacheName)
		}

		return vec, nil
	}

	val, err, _ := s.queryLoadGroup.Do(query, func() (any, error) {
		vec, loadErr := s.embeddingClient.CreateEmbedding(ctx, query)
		if loadErr != nil {
			return nil, fmt.Errorf("create embedding: %w", loadErr)
		}

		s.queryCache.Add(query, vec)

		return vec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	if s.cacheMetrics != nil {
		s.cacheMetrics.RecordMiss(ctx, recommendQueryCacheName)
	}

	return val.([]float32), nil
}
