// Command precompute runs the clustering pipeline ahead of serving: it loads
// the catalog artifacts, computes cluster assignments and labels, and writes
// the cluster cache so the API starts warm.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bookfinder/recommender/internal/catalog"
	"github.com/bookfinder/recommender/internal/clustercache"
	"github.com/bookfinder/recommender/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogStore := catalog.NewStore(cfg.DataDir, logger)

	cache := clustercache.New(clustercache.Params{
		Provider: catalogStore,
		Path:     cfg.ClusterCachePath,
		K:        cfg.NumClusters,
		Seed:     cfg.ClusterSeed,
		Logger:   logger,
	})

	slog.Info("Precomputing clusters",
		"data_dir", cfg.DataDir,
		"cache_path", cfg.ClusterCachePath,
		"num_clusters", cfg.NumClusters,
		"seed", cfg.ClusterSeed,
	)

	entry, err := cache.Refresh(ctx)
	if err != nil {
		slog.Error("Cluster precompute failed", "error", err)
		os.Exit(1)
	}

	sizes := make(map[int]int, len(entry.Labels))
	for _, id := range entry.Assignments {
		sizes[id]++
	}

	empty := 0
	for id := range entry.Labels {
		if sizes[id] == 0 {
			empty++
		}
	}

	slog.Info("Cluster precompute complete",
		"books", len(entry.Books),
		"clusters", len(entry.Labels),
		"empty_clusters", empty,
	)
}

// setupLogging configures slog with the specified log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
