// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Port     string
	APIKey   string
	LogLevel string

	// DataDir holds the processed catalog and embeddings artifacts.
	DataDir string
	// ClusterCachePath is where the clustered-catalog artifact is persisted.
	ClusterCachePath string
	// FeedbackPath is the feedback store file.
	FeedbackPath string

	// NumClusters is K for the clustering run.
	NumClusters int
	// ClusterSeed seeds centroid initialization for reproducible assignments.
	ClusterSeed int64

	OpenAIAPIKey   string
	EmbeddingModel string

	// GenerativeSummaries gates the language-model summary tier; the
	// deterministic tier is always available.
	GenerativeSummaries bool
	SummaryModel        string
	SummaryTimeout      time.Duration

	// RateLimitPerMinute caps requests per client on the API.
	RateLimitPerMinute int
	// OpenAIRateLimit caps outbound OpenAI calls per second.
	OpenAIRateLimit float64

	// MetricsEnabled gates the Prometheus /metrics endpoint.
	MetricsEnabled bool
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool retrieves an environment variable as a bool or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// Load reads configuration from environment variables and returns a Config struct.
// It automatically loads .env file if it exists.
// Returns default values for any missing environment variables.
// API_KEY is required and the function will return an error if it's not set.
func Load() (*Config, error) {
	// Load .env file if it exists. Skip logging when absent (e.g. env from secrets/parameter store).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		return nil, errors.New("API_KEY environment variable is required but not set")
	}

	numClusters := getEnvAsInt("NUM_CLUSTERS", 20)
	if numClusters < 1 {
		return nil, errors.New("NUM_CLUSTERS must be a positive integer")
	}

	rateLimitPerMinute := getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10)
	if rateLimitPerMinute <= 0 {
		return nil, errors.New("RATE_LIMIT_PER_MINUTE must be a positive integer")
	}

	summaryTimeoutSeconds := getEnvAsInt("SUMMARY_TIMEOUT_SECONDS", 10)
	if summaryTimeoutSeconds <= 0 {
		return nil, errors.New("SUMMARY_TIMEOUT_SECONDS must be a positive integer")
	}

	dataDir := getEnv("DATA_DIR", "data/processed")

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		APIKey:   apiKey,
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataDir:          dataDir,
		ClusterCachePath: getEnv("CLUSTER_CACHE_PATH", filepath.Join(dataDir, "cluster_cache.json")),
		FeedbackPath:     getEnv("FEEDBACK_PATH", filepath.Join(dataDir, "feedback.jsonl")),

		NumClusters: numClusters,
		ClusterSeed: int64(getEnvAsInt("CLUSTER_SEED", 42)),

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		GenerativeSummaries: getEnvAsBool("GENERATIVE_SUMMARIES", true),
		SummaryModel:        getEnv("SUMMARY_MODEL", "gpt-4o-mini"),
		SummaryTimeout:      time.Duration(summaryTimeoutSeconds) * time.Second,

		RateLimitPerMinute: rateLimitPerMinute,
		OpenAIRateLimit:    getEnvAsFloat("OPENAI_RATE_LIMIT", 5),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	return cfg, nil
}
