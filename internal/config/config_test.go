package config

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		shouldSet    bool
		want         int
	}{
		{
			name:         "returns environment variable as int when set with valid integer",
			key:          "TEST_INT_VAR",
			defaultValue: 100,
			envValue:     "200",
			shouldSet:    true,
			want:         200,
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_INT_VAR_MISSING",
			defaultValue: 100,
			envValue:     "",
			shouldSet:    false,
			want:         100,
		},
		{
			name:         "returns default when environment variable is not a valid integer",
			key:          "TEST_INT_VAR_INVALID",
			defaultValue: 100,
			envValue:     "not_a_number",
			shouldSet:    true,
			want:         100,
		},
		{
			name:         "handles negative integers",
			key:          "TEST_INT_VAR_NEGATIVE",
			defaultValue: 100,
			envValue:     "-50",
			shouldSet:    true,
			want:         -50,
		},
		{
			name:         "handles zero",
			key:          "TEST_INT_VAR_ZERO",
			defaultValue: 100,
			envValue:     "0",
			shouldSet:    true,
			want:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		dataDir     string
		port        string
		setDataDir  bool
		setPort     bool
		wantDataDir string
		wantPort    string
	}{
		{
			name:        "returns default values when no environment variables set",
			dataDir:     "",
			port:        "",
			setDataDir:  false,
			setPort:     false,
			wantDataDir: "data/processed",
			wantPort:    "8080",
		},
		{
			name:        "returns custom DATA_DIR when set",
			dataDir:     "/var/lib/recommender",
			port:        "",
			setDataDir:  true,
			setPort:     false,
			wantDataDir: "/var/lib/recommender",
			wantPort:    "8080",
		},
		{
			name:        "returns custom PORT when set",
			dataDir:     "",
			port:        "3000",
			setDataDir:  false,
			setPort:     true,
			wantDataDir: "data/processed",
			wantPort:    "3000",
		},
		{
			name:        "returns custom values for both when set",
			dataDir:     "/var/lib/recommender",
			port:        "3000",
			setDataDir:  true,
			setPort:     true,
			wantDataDir: "/var/lib/recommender",
			wantPort:    "3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// API_KEY is required for Load() to succeed
			t.Setenv("API_KEY", "test-api-key")

			if tt.setDataDir {
				t.Setenv("DATA_DIR", tt.dataDir)
			}
			if tt.setPort {
				t.Setenv("PORT", tt.port)
			}

			cfg, err := Load()
			if err != nil {
				t.Errorf("Load() error = %v, want nil", err)
				return
			}

			if cfg.DataDir != tt.wantDataDir {
				t.Errorf("Load() DataDir = %v, want %v", cfg.DataDir, tt.wantDataDir)
			}

			if cfg.Port != tt.wantPort {
				t.Errorf("Load() Port = %v, want %v", cfg.Port, tt.wantPort)
			}
		})
	}
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Error("Load() error = nil, want error when API_KEY is unset")
	}
}

func TestLoad_ClusterCachePathFollowsDataDir(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")
	t.Setenv("DATA_DIR", "/srv/books")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ClusterCachePath != "/srv/books/cluster_cache.json" {
		t.Errorf("ClusterCachePath = %v, want /srv/books/cluster_cache.json", cfg.ClusterCachePath)
	}

	if cfg.FeedbackPath != "/srv/books/feedback.jsonl" {
		t.Errorf("FeedbackPath = %v, want /srv/books/feedback.jsonl", cfg.FeedbackPath)
	}
}

func TestLoad_NumClusters(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")

	t.Run("default is 20 when unset", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.NumClusters != 20 {
			t.Errorf("NumClusters = %d, want 20", cfg.NumClusters)
		}
	})

	t.Run("override via NUM_CLUSTERS", func(t *testing.T) {
		t.Setenv("NUM_CLUSTERS", "8")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.NumClusters != 8 {
			t.Errorf("NumClusters = %d, want 8", cfg.NumClusters)
		}
	})

	t.Run("validation error when < 1", func(t *testing.T) {
		t.Setenv("NUM_CLUSTERS", "0")
		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for NUM_CLUSTERS < 1")
		}
	})

	t.Run("non-numeric falls back to default", func(t *testing.T) {
		t.Setenv("NUM_CLUSTERS", "x")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.NumClusters != 20 {
			t.Errorf("NumClusters = %d, want default 20", cfg.NumClusters)
		}
	})
}

func TestLoad_SummaryTimeout(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")

	t.Run("default is 10s", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.SummaryTimeout != 10*time.Second {
			t.Errorf("SummaryTimeout = %v, want 10s", cfg.SummaryTimeout)
		}
	})

	t.Run("override via SUMMARY_TIMEOUT_SECONDS", func(t *testing.T) {
		t.Setenv("SUMMARY_TIMEOUT_SECONDS", "3")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.SummaryTimeout != 3*time.Second {
			t.Errorf("SummaryTimeout = %v, want 3s", cfg.SummaryTimeout)
		}
	})

	t.Run("validation error when <= 0", func(t *testing.T) {
		t.Setenv("SUMMARY_TIMEOUT_SECONDS", "0")
		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for SUMMARY_TIMEOUT_SECONDS <= 0")
		}
	})
}
