package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL", "LLM_TEMPERATURE",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_RETRY_ATTEMPTS", "EMBEDDING_RETRY_DELAY",
	"INDEX_BACKEND", "QDRANT_URL", "INDEX_ROOT", "CHUNK_SIZE", "CHUNK_OVERLAP", "RETRIEVAL_K",
	"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "WEATHER_RATE_PER_MINUTE", "REGION_CAPITALS_FILE",
	"DB_PATH", "DOCUMENTS_DIR", "STAGE_TIMEOUT", "SUMMARY_CACHE_TTL", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every key Load reads and restores the originals when the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		if value, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { _ = os.Setenv(key, value) })
		} else {
			t.Cleanup(func() { _ = os.Unsetenv(key) })
		}
		_ = os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     string
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.Index.ChunkSize != 1000 || cfg.Index.ChunkOverlap != 150 || cfg.Index.K != 4 {
					t.Errorf("build defaults = %d/%d/%d, want 1000/150/4", cfg.Index.ChunkSize, cfg.Index.ChunkOverlap, cfg.Index.K)
				}
				if cfg.Embedding.ModelName != "text-embedding-3-small" {
					t.Errorf("Embedding.ModelName = %q", cfg.Embedding.ModelName)
				}
				if cfg.LLM.Model != "gpt-4o-mini" {
					t.Errorf("LLM.Model = %q", cfg.LLM.Model)
				}
				if cfg.Index.Backend != BackendQdrant {
					t.Errorf("Index.Backend = %q", cfg.Index.Backend)
				}
				if cfg.StageTimeout != 60*time.Second {
					t.Errorf("StageTimeout = %v", cfg.StageTimeout)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"INDEX_BACKEND":       "memory",
				"CHUNK_SIZE":          "500",
				"CHUNK_OVERLAP":       "50",
				"STAGE_TIMEOUT":       "5s",
				"LLM_MODEL":           "local-model",
				"API_PORT":            "8088",
				"LOG_FORMAT":          "json",
				"LOG_LEVEL":           "debug",
				"OPENWEATHER_API_KEY": "key",
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.Index.Backend != BackendMemory {
					t.Errorf("Index.Backend = %q", cfg.Index.Backend)
				}
				if cfg.Index.ChunkSize != 500 || cfg.Index.ChunkOverlap != 50 {
					t.Errorf("chunk params = %d/%d", cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
				}
				if cfg.StageTimeout != 5*time.Second {
					t.Errorf("StageTimeout = %v", cfg.StageTimeout)
				}
				if cfg.APIPort != "8088" || cfg.LLM.Model != "local-model" || cfg.Weather.APIKey != "key" {
					t.Errorf("unexpected overrides: %+v", cfg)
				}
			},
		},
		{
			name:    "overlap not below chunk size",
			env:     map[string]string{"CHUNK_SIZE": "100", "CHUNK_OVERLAP": "100"},
			wantErr: "CHUNK_OVERLAP",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"INDEX_BACKEND": "faiss"},
			wantErr: "INDEX_BACKEND",
		},
		{
			name:    "non-positive k",
			env:     map[string]string{"RETRIEVAL_K": "0"},
			wantErr: "RETRIEVAL_K",
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "unparseable integer",
			env:     map[string]string{"CHUNK_SIZE": "big"},
			wantErr: "failed to parse environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "data", "test.db"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Load() error = nil, want error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if _, err := os.Stat(filepath.Dir(cfg.DBPath)); err != nil {
				t.Errorf("data directory not created: %v", err)
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := &Config{
		Index:        IndexConfig{Backend: "x", ChunkSize: 0, ChunkOverlap: -1, K: 0},
		Weather:      WeatherConfig{RatePerMinute: 0},
		Embedding:    EmbeddingConfig{RetryAttempts: 0},
		StageTimeout: 0,
		LogLevel:     "info",
		LogFormat:    "text",
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, key := range []string{"INDEX_BACKEND", "CHUNK_SIZE", "CHUNK_OVERLAP", "RETRIEVAL_K", "STAGE_TIMEOUT", "WEATHER_RATE_PER_MINUTE", "EMBEDDING_RETRY_ATTEMPTS"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Validate() error missing %s: %v", key, err)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIndexConfig_Location(t *testing.T) {
	q := IndexConfig{Backend: BackendQdrant, QdrantURL: "http://q:6333"}
	if got := q.Location(); got != "http://q:6333" {
		t.Errorf("Location() = %q", got)
	}
	m := IndexConfig{Backend: BackendMemory, Root: "/tmp/idx"}
	if got := m.Location(); got != "memory:///tmp/idx" {
		t.Errorf("Location() = %q", got)
	}
}
