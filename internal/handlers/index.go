package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/service"
	"assistant-ai/internal/workflow"
)

// IndexHandler handles HTTP requests for building a document index ahead of questions.
type IndexHandler struct {
	assistant service.AssistantService
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(assistant service.AssistantService) *IndexHandler {
	return &IndexHandler{assistant: assistant}
}

// IndexRequest represents the request payload for the index endpoint.
type IndexRequest struct {
	DocumentRef string `json:"document_ref"`
	BuildParams
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Status string `json:"status"`
	workflow.WarmResult
}

// ServeHTTP builds the index synchronously. ?force=true rebuilds even when the cache is valid.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	force := r.URL.Query().Get("force") == "true"
	if force {
		logger.InfoContext(ctx, "forced index rebuild triggered via API", "document_ref", req.DocumentRef)
	}

	res, err := h.assistant.WarmIndex(ctx, service.IndexRequest{
		DocumentRef: req.DocumentRef,
		Build:       req.BuildParams.options(),
		Force:       force,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to build index")
		return
	}

	status := "built"
	if res.CacheHit {
		status = "cached"
	}
	writeJSON(ctx, w, http.StatusOK, IndexResponse{Status: status, WarmResult: res})
}
