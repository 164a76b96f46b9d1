package workflow

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_workflow_deps.go -package=mocks assistant-ai/internal/workflow Router,CacheGate,Loader,Splitter,Indexer,AnswerGenerator,WeatherHandler

import (
	"context"

	"assistant-ai/internal/index"
	"assistant-ai/internal/indexcache"
	"assistant-ai/internal/ingest"
	"assistant-ai/internal/router"
	"assistant-ai/internal/weather"
)

// Router picks the intent for a question.
type Router interface {
	Route(ctx context.Context, question, docPath string) router.Decision
}

// CacheGate decides index reuse and records built indexes.
type CacheGate interface {
	Check(ctx context.Context, docPath string, params indexcache.Params, forceRebuild bool) (indexcache.Validity, error)
	Record(ctx context.Context, v indexcache.Validity, params indexcache.Params, stats indexcache.BuildStats) error
	Invalidate(ctx context.Context, collectionID string) error
}

// Loader reads a document into text units.
type Loader interface {
	Load(ctx context.Context, path string) ([]ingest.Unit, error)
}

// Splitter splits units into overlapping chunks.
type Splitter interface {
	Split(units []ingest.Unit, chunkSize, chunkOverlap int) ([]ingest.Chunk, error)
}

// Indexer builds and attaches document collections.
type Indexer interface {
	Build(ctx context.Context, req index.BuildRequest) (index.BuildResult, error)
	Attach(ctx context.Context, location, collectionID, model string) (*index.Handle, error)
}

// AnswerGenerator answers a question from retrieved context.
type AnswerGenerator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

// WeatherHandler answers weather questions. It never fails; problems are in the result.
type WeatherHandler interface {
	Handle(ctx context.Context, question string) weather.Result
}
