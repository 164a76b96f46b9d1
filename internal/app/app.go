// Package app assembles the assistant from configuration and owns the
// resources that must be torn down on exit.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"assistant-ai/internal/config"
	"assistant-ai/internal/document"
	"assistant-ai/internal/fingerprint"
	"assistant-ai/internal/index"
	"assistant-ai/internal/indexcache"
	"assistant-ai/internal/ingest"
	"assistant-ai/internal/llm"
	"assistant-ai/internal/router"
	"assistant-ai/internal/service"
	"assistant-ai/internal/storage"
	"assistant-ai/internal/vectorstore"
	"assistant-ai/internal/weather"
	"assistant-ai/internal/workflow"
)

const memoryScheme = "memory://"

// App is the wired assistant.
type App struct {
	Config    *config.Config
	Assistant service.AssistantService
	Engine    *workflow.Engine
	Indexes   *index.Manager
	// Location is the storage location of the configured index backend
	Location string

	db *sql.DB
}

type options struct {
	libraryRoot string
}

// Option customises New.
type Option func(*options)

// WithLibraryRoot resolves document references against root instead of DOCUMENTS_DIR.
func WithLibraryRoot(root string) Option {
	return func(o *options) {
		o.libraryRoot = root
	}
}

// New wires every component from cfg. Nothing here contacts the LLM,
// embedding or vector services; clients connect on first use.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{libraryRoot: cfg.DocumentsDir}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	fingerprints := fingerprint.NewService(storage.NewFingerprintRepo(db))

	embedder := llm.NewEmbeddingsClient(
		cfg.Embedding.BaseURL,
		cfg.LLM.APIKey,
		cfg.Embedding.ModelName,
		llm.WithRetry(cfg.Embedding.RetryAttempts, cfg.Embedding.RetryDelay),
	)
	indexes := index.NewManager(connect, func(model string) index.Embedder {
		return embedder.WithModel(model)
	})
	location := cfg.Index.Location()

	chat := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	chat.Temperature = float32(cfg.LLM.Temperature)

	loaders := ingest.NewDefaultRegistry()
	splitter := ingest.NewRecursiveSplitter()

	summaries := router.NewSummaryProvider(
		loaders,
		splitter,
		llm.NewSummarizer(chat),
		fingerprints,
		cfg.LLM.Model,
		cfg.SummaryTTL,
	)
	intentRouter := router.New(llm.NewClassifier(chat), summaries)

	capitals, err := weather.LoadCapitals(cfg.Weather.CapitalsFile)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load region capitals: %w", err)
	}
	weatherHandler := weather.NewHandler(
		llm.NewLocationExtractor(chat),
		weather.NewOpenWeatherClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.RatePerMinute),
		capitals,
	)
	if cfg.Weather.APIKey == "" {
		slog.Warn("OPENWEATHER_API_KEY is not set; weather lookups will fail")
	}

	gate := indexcache.NewGate(fingerprints, indexes, indexcache.NewFileDescriptorStore(cfg.Index.Root), location)

	engine := workflow.NewEngine(
		intentRouter,
		gate,
		loaders,
		splitter,
		indexes,
		llm.NewAnswerGenerator(chat),
		weatherHandler,
		cfg.StageTimeout,
	)

	library := document.NewLibrary(o.libraryRoot, loaders.Supports)
	assistant := service.NewAssistantService(engine, library, service.Defaults{
		ChunkSize:      cfg.Index.ChunkSize,
		ChunkOverlap:   cfg.Index.ChunkOverlap,
		EmbeddingModel: cfg.Embedding.ModelName,
		K:              cfg.Index.K,
	})

	slog.Info("Assistant initialized",
		"index_backend", cfg.Index.Backend,
		"location", location,
		"library", library.Root,
		"llm_model", cfg.LLM.Model,
		"embedding_model", cfg.Embedding.ModelName,
	)

	return &App{
		Config:    cfg,
		Assistant: assistant,
		Engine:    engine,
		Indexes:   indexes,
		Location:  location,
		db:        db,
	}, nil
}

// Close releases every pooled index handle and backend client, then closes the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Indexes.Teardown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to tear down indexes: %w", err))
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	return errors.Join(errs...)
}

// connect opens the vector store for a storage location. Memory locations
// get a fresh in-process store; anything else is a Qdrant URL.
func connect(_ context.Context, location string) (vectorstore.VectorStore, error) {
	if strings.HasPrefix(location, memoryScheme) {
		return vectorstore.NewMemoryStore(), nil
	}
	store, err := vectorstore.NewQdrantStore(location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	return store, nil
}
