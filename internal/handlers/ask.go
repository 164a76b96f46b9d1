package handlers

import (
	"encoding/json"
	"net/http"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/service"
	"assistant-ai/internal/workflow"
)

// AskHandler handles HTTP requests for routed questions.
type AskHandler struct {
	assistant service.AssistantService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(assistant service.AssistantService) *AskHandler {
	return &AskHandler{assistant: assistant}
}

// BuildParams overrides the configured index build parameters.
//
// swagger:model BuildParams
type BuildParams struct {
	ChunkSize      int    `json:"chunk_size,omitempty"`
	ChunkOverlap   *int   `json:"chunk_overlap,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

func (p BuildParams) options() service.BuildOptions {
	return service.BuildOptions{
		ChunkSize:      p.ChunkSize,
		ChunkOverlap:   p.ChunkOverlap,
		EmbeddingModel: p.EmbeddingModel,
	}
}

// AskRequest represents the HTTP request payload for questions.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`

	// Library-relative path of the document to answer from
	DocumentRef string `json:"document_ref,omitempty"`

	BuildParams
	K            int  `json:"k,omitempty"`
	ForceRebuild bool `json:"force_rebuild,omitempty"`
}

// AskResponse is the workflow result. Failed workflows still answer with 200
// and carry the failure in Error.
//
// swagger:model AskResponse
type AskResponse = workflow.Result

// ServeHTTP handles HTTP requests for questions.
//
// swagger:route POST /api/v1/ask askQuestion
//
// # Ask a question
//
// Routes the question to document QA, weather lookup or the help agent and
// returns the answer with the execution trace.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Answer, trace and metadata
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Invalid question, build parameters or document reference
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'404':
//	  description: Document not found
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.assistant.Ask(ctx, service.AskRequest{
		Question:     req.Question,
		DocumentRef:  req.DocumentRef,
		Build:        req.BuildParams.options(),
		K:            req.K,
		ForceRebuild: req.ForceRebuild,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process question")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
