package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/bookfinder/recommender/internal/api/handlers"
	"github.com/bookfinder/recommender/internal/api/middleware"
	"github.com/bookfinder/recommender/internal/api/response"
	"github.com/bookfinder/recommender/internal/catalog"
	"github.com/bookfinder/recommender/internal/clustercache"
	"github.com/bookfinder/recommender/internal/config"
	"github.com/bookfinder/recommender/internal/explain"
	"github.com/bookfinder/recommender/internal/feedback"
	"github.com/bookfinder/recommender/internal/observability"
	"github.com/bookfinder/recommender/internal/openai"
	"github.com/bookfinder/recommender/internal/service"
)

const queryEmbeddingCacheSize = 512

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)
	logger := slog.Default()

	// Initialize metrics if enabled
	metrics := &observability.Metrics{}

	var (
		meterProvider  observability.MeterProviderShutdown
		metricsHandler http.Handler
	)

	if cfg.MetricsEnabled {
		meterProvider, metricsHandler, metrics, err = observability.NewMeterProvider(ctx, observability.MeterProviderConfig{})
		if err != nil {
			slog.Error("Failed to initialize metrics", "error", err)
			os.Exit(1)
		}
	}

	// Catalog artifacts and the cluster cache
	catalogStore := catalog.NewStore(cfg.DataDir, logger)

	clusterCache := clustercache.New(clustercache.Params{
		Provider:       catalogStore,
		Path:           cfg.ClusterCachePath,
		K:              cfg.NumClusters,
		Seed:           cfg.ClusterSeed,
		Logger:         logger,
		CacheMetrics:   metrics.Cache,
		ClusterMetrics: metrics.Cluster,
	})

	// Initialize OpenAI client if the API key is configured
	var openaiClient *openai.Client
	if cfg.OpenAIAPIKey != "" {
		openaiClient = openai.NewClient(cfg.OpenAIAPIKey,
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
			openai.WithSummaryModel(cfg.SummaryModel),
			openai.WithSummaryTimeout(cfg.SummaryTimeout),
			openai.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.OpenAIRateLimit), 1)),
		)
		slog.Info("OpenAI enabled", "embedding_model", cfg.EmbeddingModel, "summary_model", cfg.SummaryModel)
	} else {
		slog.Info("Recommendations disabled (OPENAI_API_KEY not set); cluster browsing still available")
	}

	// Explanation stack: generative tier only when a provider is configured and enabled
	var generative explain.Generative
	if openaiClient != nil && cfg.GenerativeSummaries {
		generative = openaiClient
	}

	summaries := explain.NewSummaryGenerator(generative, metrics.Explain, logger)
	explainEngine := explain.NewEngine(summaries, logger)

	// Services and handlers
	clustersService := service.NewClustersService(clusterCache, logger)
	clustersHandler := handlers.NewClustersHandler(clustersService, logger)

	feedbackStore := feedback.NewStore(cfg.FeedbackPath)
	feedbackService := service.NewFeedbackService(feedbackStore, logger)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, logger)

	healthHandler := handlers.NewHealthHandler()

	// Set up public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)

	if metricsHandler != nil {
		publicMux.Handle("GET /metrics", metricsHandler)
	}

	// Set up protected endpoints (authentication required)
	protectedMux := http.NewServeMux()

	if openaiClient != nil {
		queryCache, err := lru.New[string, []float32](queryEmbeddingCacheSize)
		if err != nil {
			slog.Error("Failed to create query embedding cache", "error", err)
			os.Exit(1)
		}

		recommenderService := service.NewRecommenderService(service.RecommenderServiceParams{
			EmbeddingClient: openaiClient,
			Provider:        catalogStore,
			Explainer:       explainEngine,
			QueryCache:      queryCache,
			CacheMetrics:    metrics.Cache,
			Logger:          logger,
		})
		recommendHandler := handlers.NewRecommendHandler(recommenderService, logger)
		protectedMux.HandleFunc("POST /v1/recommendations", recommendHandler.Recommend)
	} else {
		protectedMux.HandleFunc("POST /v1/recommendations", func(w http.ResponseWriter, _ *http.Request) {
			response.RespondServiceUnavailable(w, "Recommendations are disabled: no embedding provider configured")
		})
	}

	protectedMux.HandleFunc("GET /v1/clusters", clustersHandler.List)
	protectedMux.HandleFunc("GET /v1/clusters/{id}/books", clustersHandler.Books)

	protectedMux.HandleFunc("POST /v1/feedback", feedbackHandler.Create)
	protectedMux.HandleFunc("GET /v1/feedback", feedbackHandler.List)

	// Apply middleware to protected endpoints. RateLimit wraps Auth so
	// rejected clients don't pay for key validation.
	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)
	protectedHandler = middleware.RateLimit(cfg.RateLimitPerMinute)(protectedHandler)

	// Combine both handlers
	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicMux) // Catch-all for public routes (/health, /metrics)

	// Request ID first, then logging, with metrics outermost so duration is full request time
	var handler http.Handler = mainMux
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Metrics(metrics.API)(handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// 2. Flush metrics
	if meterProvider != nil {
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Meter provider forced to shutdown", "error", err)
		}
	}

	slog.Info("Server exited")
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

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := observability.NewRequestIDHandler(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(slog.New(handler))
}
