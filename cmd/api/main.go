package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assistant-ai/internal/app"
	"assistant-ai/internal/config"
	"assistant-ai/internal/http"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API routes natural-language questions to document question answering,
// weather lookup or a help response, and manages the cached document indexes.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Assistant AI API
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	assistant, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize assistant: %v", err)
	}

	router := http.NewRouter(&http.Deps{
		Assistant:     assistant.Assistant,
		Backend:       assistant.Indexes,
		IndexLocation: assistant.Location,
	})

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting API server", "addr", addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLM.BaseURL, "model", cfg.LLM.Model)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			slog.Error("API server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down API server", "error", err)
	}
	if err := assistant.Close(shutdownCtx); err != nil {
		slog.Error("Failed to release resources", "error", err)
	}
}
