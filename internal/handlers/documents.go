package handlers

import (
	"net/http"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/document"
	"assistant-ai/internal/service"
)

// DocumentsHandler lists the documents questions can be asked about.
type DocumentsHandler struct {
	assistant service.AssistantService
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(assistant service.AssistantService) *DocumentsHandler {
	return &DocumentsHandler{assistant: assistant}
}

// DocumentsResponse represents the response from the documents endpoint.
//
// swagger:model DocumentsResponse
type DocumentsResponse struct {
	Documents []document.Entry `json:"documents"`
}

func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	entries, err := h.assistant.Documents(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list documents")
		return
	}
	if entries == nil {
		entries = []document.Entry{}
	}
	writeJSON(ctx, w, http.StatusOK, DocumentsResponse{Documents: entries})
}
