// Package clustercache owns the lifecycle of the clustered-catalog artifact:
// per-book cluster assignments, cluster labels, and the enriched catalog,
// persisted together as one unit and reused across warm starts.
package clustercache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/bookfinder/recommender/internal/catalog"
	"github.com/bookfinder/recommender/internal/clustering"
	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/observability"
)

const cacheName = "cluster_cache"

// Provider supplies the current catalog snapshot and the last-write timestamp
// of the embeddings artifact used for staleness comparison.
type Provider interface {
	Load(ctx context.Context) (*catalog.Data, error)
	EmbeddingsModTime() (time.Time, error)
}

// Cache computes, persists, and memoizes the clustered catalog. Safe for
// concurrent first access: the first caller computes under the lock, later
// callers reuse the in-memory entry for the process lifetime.
type Cache struct {
	provider       Provider
	path           string
	k              int
	seed           int64
	logger         *slog.Logger
	cacheMetrics   observability.CacheMetrics
	clusterMetrics observability.ClusterMetrics

	mu    sync.Mutex
	entry *models.ClusterCacheEntry
}

// Params configures Cache. CacheMetrics and ClusterMetrics may be nil
// (no metric recording); Logger may be nil (slog default).
type Params struct {
	Provider       Provider
	Path           string
	K              int
	Seed           int64
	Logger         *slog.Logger
	CacheMetrics   observability.CacheMetrics
	ClusterMetrics observability.ClusterMetrics
}

// New creates a Cache persisting to p.Path.
func New(p Params) *Cache {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		provider:       p.Provider,
		path:           p.Path,
		k:              p.K,
		seed:           p.Seed,
		logger:         logger,
		cacheMetrics:   p.CacheMetrics,
		clusterMetrics: p.ClusterMetrics,
	}
}

// GetClusters returns the clustered catalog, idempotent and cheap after the
// first successful computation. Resolution order:
//
//  1. the memoized in-memory entry, if present;
//  2. the persisted entry, if strictly newer than the embeddings artifact
//     (a read or decode failure here is a cache miss, never fatal);
//  3. a fresh computation, persisted best-effort.
//
// All callers racing the first access block on one computation; none trigger
// their own. Errors from the upstream provider (data not ready) and from
// cluster configuration (invalid K) propagate to the caller.
func (c *Cache) GetClusters(ctx context.Context) (*models.ClusterCacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil {
		if c.cacheMetrics != nil {
			c.cacheMetrics.RecordHit(ctx, cacheName)
		}

		return c.entry, nil
	}

	if entry := c.loadPersisted(); entry != nil {
		if c.cacheMetrics != nil {
			c.cacheMetrics.RecordHit(ctx, cacheName)
		}

		c.entry = entry

		return entry, nil
	}

	if c.cacheMetrics != nil {
		c.cacheMetrics.RecordMiss(ctx, cacheName)
	}

	entry, err := c.recompute(ctx)
	if err != nil {
		if c.clusterMetrics != nil {
			c.clusterMetrics.RecordRecompute(ctx, "error")
		}

		return nil, err
	}

	if c.clusterMetrics != nil {
		c.clusterMetrics.RecordRecompute(ctx, "ok")
	}

	c.entry = entry

	return entry, nil
}

// Refresh recomputes the clustered catalog unconditionally, replaces the
// in-memory entry, and persists the result. Used by the precompute CLI.
func (c *Cache) Refresh(ctx context.Context) (*models.ClusterCacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.recompute(ctx)
	if err != nil {
		return nil, err
	}

	c.entry = entry

	return entry, nil
}

// loadPersisted returns the persisted entry when it is present, strictly
// newer than the embeddings artifact, and decodes cleanly. Any other outcome
// is a cache miss: stale and unreadable entries are discarded with a warning,
// never surfaced as errors.
func (c *Cache) loadPersisted() *models.ClusterCacheEntry {
	cacheInfo, err := os.Stat(c.path)
	if err != nil {
		return nil
	}

	embModTime, err := c.provider.EmbeddingsModTime()
	if err != nil {
		c.logger.Warn("cluster cache staleness check failed, regenerating", "error", err)

		return nil
	}

	if !cacheInfo.ModTime().After(embModTime) {
		c.logger.Info("cluster cache outdated, regenerating",
			"cache_mtime", cacheInfo.ModTime(), "embeddings_mtime", embModTime)

		return nil
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		c.logger.Warn("cluster cache load failed, regenerating", "error", err)

		return nil
	}

	var entry models.ClusterCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("cluster cache decode failed, regenerating", "error", err)

		return nil
	}

	if len(entry.Assignments) != len(entry.Books) || len(entry.Labels) == 0 {
		c.logger.Warn("cluster cache entry inconsistent, regenerating",
			"assignments", len(entry.Assignments), "books", len(entry.Books))

		return nil
	}

	c.logger.Info("clusters loaded from cache", "clusters", len(entry.Labels), "books", len(entry.Books))

	return &entry
}

// recompute builds a fresh entry from the current catalog and embeddings and
// persists it best-effort. A persistence failure is logged and swallowed; the
// in-memory result is still returned.
func (c *Cache) recompute(ctx context.Context) (*models.ClusterCacheEntry, error) {
	data, err := c.provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog for clustering: %w", err)
	}

	result, err := clustering.Cluster(data.Embeddings, c.k, c.seed)
	if err != nil {
		return nil, err
	}

	labels := clustering.NameClusters(data.Books, result.Assignments)

	// Enrich a copy of the catalog; assignments and cluster ids are written
	// together as one unit and stay consistent for the entry's lifetime.
	books := make([]models.Book, len(data.Books))
	copy(books, data.Books)

	for i := range books {
		id := result.Assignments[i]
		books[i].ClusterID = &id
	}

	entry := &models.ClusterCacheEntry{
		Assignments: result.Assignments,
		Labels:      labels,
		Books:       books,
	}

	if err := c.persist(entry); err != nil {
		c.logger.Warn("failed to persist cluster cache", "error", err, "path", c.path)
	} else {
		c.logger.Info("clusters cached", "path", c.path, "clusters", len(labels))
	}

	return entry, nil
}

// persist writes the entry via write-to-temp-then-rename so a concurrent
// reader never observes a partially written file.
func (c *Cache) persist(entry *models.ClusterCacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cluster cache: %w", err)
	}

	dir := filepath.Dir(c.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("write temp cache file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("replace cache file: %w", err)
	}

	return nil
}
