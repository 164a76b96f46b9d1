package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"assistant-ai/internal/config"
	"assistant-ai/internal/vectorstore"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	docs := filepath.Join(dir, "documents")
	if err := os.MkdirAll(docs, 0755); err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		LLM:       config.LLMConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k", Model: "m"},
		Embedding: config.EmbeddingConfig{BaseURL: "http://127.0.0.1:1", ModelName: "e", RetryAttempts: 1},
		Index: config.IndexConfig{
			Backend:      config.BackendMemory,
			Root:         filepath.Join(dir, "indices"),
			ChunkSize:    1000,
			ChunkOverlap: 150,
			K:            4,
		},
		Weather:      config.WeatherConfig{BaseURL: "http://127.0.0.1:1", RatePerMinute: 60},
		DBPath:       filepath.Join(dir, "assistant.db"),
		DocumentsDir: docs,
		StageTimeout: time.Second,
		SummaryTTL:   time.Hour,
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.DocumentsDir, "notes.md"), []byte("# Notes\n\nhello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.DocumentsDir, "image.png"), []byte{0x89}, 0644); err != nil {
		t.Fatal(err)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if a.Location != "memory://"+cfg.Index.Root {
		t.Errorf("Location = %q", a.Location)
	}
	if err := a.Indexes.Ping(ctx, a.Location); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	entries, err := a.Assistant.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Ref != "notes.md" {
		t.Errorf("Documents() = %+v, want only notes.md", entries)
	}

	if err := a.Close(ctx); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNew_LibraryRootOption(t *testing.T) {
	cfg := testConfig(t)
	other := t.TempDir()
	if err := os.WriteFile(filepath.Join(other, "report.txt"), []byte("text"), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := New(cfg, WithLibraryRoot(other))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = a.Close(context.Background()) }()

	entries, err := a.Assistant.Documents(context.Background())
	if err != nil || len(entries) != 1 || entries[0].Ref != "report.txt" {
		t.Errorf("Documents() = %+v, %v", entries, err)
	}
}

func TestNew_BadCapitalsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Weather.CapitalsFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(cfg); err == nil {
		t.Error("New() error = nil, want capitals load failure")
	}
}

func TestConnect(t *testing.T) {
	store, err := connect(context.Background(), "memory:///tmp/idx")
	if err != nil {
		t.Fatalf("connect(memory) error = %v", err)
	}
	if _, ok := store.(*vectorstore.MemoryStore); !ok {
		t.Errorf("connect(memory) = %T, want *MemoryStore", store)
	}

	if _, err := connect(context.Background(), "://bad"); err == nil {
		t.Error("connect(bad url) error = nil")
	}
}
