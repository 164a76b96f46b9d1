package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_assistant_deps.go -package=mocks assistant-ai/internal/service Engine,Library
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_assistant_service.go -package=mocks assistant-ai/internal/service AssistantService

import (
	"context"
	"errors"
	"strings"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/document"
	"assistant-ai/internal/indexcache"
	"assistant-ai/internal/workflow"
)

const maxK = 20

// Engine runs questions and index warm-ups.
type Engine interface {
	Run(ctx context.Context, req workflow.Request) workflow.Result
	Warm(ctx context.Context, docPath string, params indexcache.Params, force bool) (workflow.WarmResult, error)
}

// Library resolves document references.
type Library interface {
	Resolve(ref string) (string, error)
	List(ctx context.Context) ([]document.Entry, error)
}

// Defaults fill in build parameters a request leaves unset.
type Defaults struct {
	ChunkSize      int
	ChunkOverlap   int
	EmbeddingModel string
	K              int
}

// BuildOptions are the per-request overrides of Defaults. Zero values mean unset.
type BuildOptions struct {
	ChunkSize      int
	ChunkOverlap   *int
	EmbeddingModel string
}

// AskRequest is a question with an optional document.
type AskRequest struct {
	Question     string
	DocumentRef  string
	Build        BuildOptions
	K            int
	ForceRebuild bool
}

// IndexRequest asks for a document index to be built ahead of questions.
type IndexRequest struct {
	DocumentRef string
	Build       BuildOptions
	Force       bool
}

// AssistantService answers questions and manages document indexes.
type AssistantService interface {
	// Ask answers a question. Workflow failures are reported in the result's Error;
	// the returned error is for requests that could not be started.
	Ask(ctx context.Context, req AskRequest) (workflow.Result, error)
	// WarmIndex builds the index for a document unless a valid one exists.
	WarmIndex(ctx context.Context, req IndexRequest) (workflow.WarmResult, error)
	// Documents lists the documents in the library.
	Documents(ctx context.Context) ([]document.Entry, error)
}

type assistantService struct {
	engine   Engine
	library  Library
	defaults Defaults
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(engine Engine, library Library, defaults Defaults) AssistantService {
	return &assistantService{
		engine:   engine,
		library:  library,
		defaults: defaults,
	}
}

func (s *assistantService) Ask(ctx context.Context, req AskRequest) (workflow.Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		logger.WarnContext(ctx, "empty question in ask request")
		return workflow.Result{}, &ValidationError{Field: "question", Message: "cannot be empty"}
	}

	params, err := s.params(req.Build)
	if err != nil {
		return workflow.Result{}, err
	}

	k := req.K
	if k == 0 {
		k = s.defaults.K
	}
	if k <= 0 {
		return workflow.Result{}, &ValidationError{Field: "k", Message: "must be greater than 0"}
	}
	k = min(k, maxK)

	var docPath string
	if req.DocumentRef != "" {
		if docPath, err = s.resolve(req.DocumentRef); err != nil {
			logger.WarnContext(ctx, "document reference rejected", "document_ref", req.DocumentRef, "error", err)
			return workflow.Result{}, err
		}
	}

	res := s.engine.Run(ctx, workflow.Request{
		Question:     question,
		DocPath:      docPath,
		Params:       params,
		K:            k,
		ForceRebuild: req.ForceRebuild,
	})
	logger.InfoContext(ctx, "question answered",
		"intent", res.Intent,
		"failed", res.Error != nil,
		"question_length", len(question),
		"answer_length", len(res.Answer),
	)
	return res, nil
}

func (s *assistantService) WarmIndex(ctx context.Context, req IndexRequest) (workflow.WarmResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.DocumentRef) == "" {
		return workflow.WarmResult{}, &ValidationError{Field: "document_ref", Message: "cannot be empty"}
	}
	params, err := s.params(req.Build)
	if err != nil {
		return workflow.WarmResult{}, err
	}
	docPath, err := s.resolve(req.DocumentRef)
	if err != nil {
		return workflow.WarmResult{}, err
	}

	res, err := s.engine.Warm(ctx, docPath, params, req.Force)
	if err != nil {
		logger.ErrorContext(ctx, "index warm-up failed", "document_ref", req.DocumentRef, "error", err)
		return res, WrapError(err, "failed to warm index")
	}
	return res, nil
}

func (s *assistantService) Documents(ctx context.Context) ([]document.Entry, error) {
	entries, err := s.library.List(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list documents", "error", err)
		return nil, WrapError(err, "failed to list documents")
	}
	return entries, nil
}

// params applies defaults to opts and checks the result.
func (s *assistantService) params(opts BuildOptions) (indexcache.Params, error) {
	p := indexcache.Params{
		ChunkSize:      s.defaults.ChunkSize,
		ChunkOverlap:   s.defaults.ChunkOverlap,
		EmbeddingModel: s.defaults.EmbeddingModel,
	}
	if opts.ChunkSize != 0 {
		p.ChunkSize = opts.ChunkSize
	}
	if opts.ChunkOverlap != nil {
		p.ChunkOverlap = *opts.ChunkOverlap
	}
	if opts.EmbeddingModel != "" {
		p.EmbeddingModel = opts.EmbeddingModel
	}

	if err := p.Validate(); err != nil {
		return indexcache.Params{}, &ValidationError{Field: "build_params", Message: err.Error()}
	}
	return p, nil
}

func (s *assistantService) resolve(ref string) (string, error) {
	docPath, err := s.library.Resolve(ref)
	switch {
	case err == nil:
		return docPath, nil
	case errors.Is(err, document.ErrInvalidRef):
		return "", &ValidationError{Field: "document_ref", Message: err.Error()}
	case errors.Is(err, document.ErrNotFound):
		return "", WrapError(ErrNotFound, err.Error())
	default:
		return "", WrapError(err, "failed to resolve document")
	}
}
