package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Index backends accepted by INDEX_BACKEND.
const (
	BackendQdrant = "qdrant"
	BackendMemory = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	LLM       LLMConfig       `envPrefix:"LLM_"`
	Embedding EmbeddingConfig `envPrefix:"EMBEDDING_"`
	Index     IndexConfig
	Weather   WeatherConfig

	DBPath       string        `env:"DB_PATH" envDefault:"./data/assistant.db"`
	DocumentsDir string        `env:"DOCUMENTS_DIR" envDefault:"./documents"`
	StageTimeout time.Duration `env:"STAGE_TIMEOUT" envDefault:"60s"`
	SummaryTTL   time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"24h"`

	APIPort   string `env:"API_PORT" envDefault:"9000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LLMConfig configures the OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	BaseURL     string  `env:"BASE_URL" envDefault:"http://localhost:8080"`
	APIKey      string  `env:"API_KEY" envDefault:"dummy-key"`
	Model       string  `env:"MODEL" envDefault:"gpt-4o-mini"`
	Temperature float64 `env:"TEMPERATURE" envDefault:"0"`
}

// EmbeddingConfig configures the embeddings endpoint and its retry policy.
type EmbeddingConfig struct {
	BaseURL       string        `env:"BASE_URL" envDefault:"http://localhost:8081"`
	ModelName     string        `env:"MODEL_NAME" envDefault:"text-embedding-3-small"`
	RetryAttempts uint          `env:"RETRY_ATTEMPTS" envDefault:"2"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" envDefault:"500ms"`
}

// IndexConfig holds the index backend location and default build parameters.
type IndexConfig struct {
	Backend      string `env:"INDEX_BACKEND" envDefault:"qdrant"`
	QdrantURL    string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
	Root         string `env:"INDEX_ROOT" envDefault:"./.indices"`
	ChunkSize    int    `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int    `env:"CHUNK_OVERLAP" envDefault:"150"`
	K            int    `env:"RETRIEVAL_K" envDefault:"4"`
}

// Location returns the storage location key for the configured backend.
func (c IndexConfig) Location() string {
	if c.Backend == BackendMemory {
		return "memory://" + c.Root
	}
	return c.QdrantURL
}

// WeatherConfig configures the OpenWeather provider.
type WeatherConfig struct {
	APIKey        string `env:"OPENWEATHER_API_KEY"`
	BaseURL       string `env:"OPENWEATHER_BASE_URL" envDefault:"https://api.openweathermap.org"`
	RatePerMinute int    `env:"WEATHER_RATE_PER_MINUTE" envDefault:"60"`
	CapitalsFile  string `env:"REGION_CAPITALS_FILE"`
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Create the data directory for the fingerprint database
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// Validate checks value ranges that struct tags cannot express.
// All violations are reported together.
func (c *Config) Validate() error {
	var problems []string

	if c.Index.Backend != BackendQdrant && c.Index.Backend != BackendMemory {
		problems = append(problems, fmt.Sprintf("INDEX_BACKEND must be %q or %q, got %q", BackendQdrant, BackendMemory, c.Index.Backend))
	}
	if c.Index.ChunkSize <= 0 {
		problems = append(problems, fmt.Sprintf("CHUNK_SIZE must be greater than 0, got %d", c.Index.ChunkSize))
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		problems = append(problems, fmt.Sprintf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.Index.ChunkOverlap))
	}
	if c.Index.K <= 0 {
		problems = append(problems, fmt.Sprintf("RETRIEVAL_K must be greater than 0, got %d", c.Index.K))
	}
	if c.StageTimeout <= 0 {
		problems = append(problems, "STAGE_TIMEOUT must be greater than 0")
	}
	if c.Weather.RatePerMinute <= 0 {
		problems = append(problems, fmt.Sprintf("WEATHER_RATE_PER_MINUTE must be greater than 0, got %d", c.Weather.RatePerMinute))
	}
	if c.Embedding.RetryAttempts == 0 {
		problems = append(problems, "EMBEDDING_RETRY_ATTEMPTS must be at least 1")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// ParseLogLevel maps LOG_LEVEL values onto slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", level)
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	level, _ := ParseLogLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
