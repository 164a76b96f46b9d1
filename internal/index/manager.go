// Package index builds, attaches to and searches per-document vector collections.
package index

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks assistant-ai/internal/index Embedder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/ingest"
	"assistant-ai/internal/registry"
	"assistant-ai/internal/vectorstore"
)

const (
	defaultBatchSize    = 64
	defaultBuildTimeout = 5 * time.Minute
	maxVariantRebuilds  = 3

	payloadText = "text"
)

// ErrNoChunks is returned when a build is requested with nothing to index.
var ErrNoChunks = errors.New("no chunks to index")

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderFunc returns the embedder for an embedding model id.
type EmbedderFunc func(model string) Embedder

// Connector opens a vector store client for a storage location.
type Connector func(ctx context.Context, location string) (vectorstore.VectorStore, error)

type handleKey struct {
	location   string
	collection string
	model      string
}

// Manager owns the pooled backend clients and attached index handles.
// Clients are keyed by storage location; handles by (location, collection, model).
type Manager struct {
	connect   Connector
	embedders EmbedderFunc

	clients *registry.Pool[string, vectorstore.VectorStore]
	handles *registry.Pool[handleKey, *Handle]
	builds  singleflight.Group

	batchSize    int
	buildTimeout time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithBatchSize sets how many chunks are embedded and upserted per call.
func WithBatchSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// WithBuildTimeout bounds a detached build.
func WithBuildTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.buildTimeout = d
		}
	}
}

// NewManager creates a Manager.
func NewManager(connect Connector, embedders EmbedderFunc, opts ...Option) *Manager {
	m := &Manager{
		connect:      connect,
		embedders:    embedders,
		clients:      registry.NewPool[string, vectorstore.VectorStore](),
		handles:      registry.NewPool[handleKey, *Handle](),
		batchSize:    defaultBatchSize,
		buildTimeout: defaultBuildTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) client(location string) registry.CreateFunc[vectorstore.VectorStore] {
	return func(ctx context.Context) (vectorstore.VectorStore, error) {
		store, err := m.connect(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", location, err)
		}
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "vector store client created", "location", location)
		return store, nil
	}
}

// ListCollections lists the collections present at location.
func (m *Manager) ListCollections(ctx context.Context, location string) ([]string, error) {
	var names []string
	err := m.clients.Use(ctx, location, m.client(location), func(store vectorstore.VectorStore) error {
		var err error
		names, err = store.ListCollections(ctx)
		return err
	})
	return names, err
}

// Ping checks that the backend at location answers.
func (m *Manager) Ping(ctx context.Context, location string) error {
	_, err := m.ListCollections(ctx, location)
	return err
}

// Attach returns a held handle onto an existing collection. The caller must Release it.
func (m *Manager) Attach(ctx context.Context, location, collectionID, model string) (*Handle, error) {
	key := handleKey{location: location, collection: collectionID, model: model}
	h, err := m.handles.Acquire(ctx, key, func(ctx context.Context) (*Handle, error) {
		store, err := m.clients.Acquire(ctx, location, m.client(location))
		if err != nil {
			return nil, err
		}
		return &Handle{
			key:      key,
			store:    store,
			embedder: m.embedders(model),
			owner:    m,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to collection %s: %w", collectionID, err)
	}
	return h, nil
}

// Teardown releases every pooled resource. Handles go first because each one
// holds a client.
func (m *Manager) Teardown(ctx context.Context) error {
	return errors.Join(m.handles.TeardownAll(ctx), m.clients.TeardownAll(ctx))
}

// Stats describes a completed build.
type Stats struct {
	ChunkCount int
	VectorSize int
}

// BuildRequest asks for a collection to be (re)built from chunks.
type BuildRequest struct {
	Location     string
	CollectionID string
	Model        string
	Chunks       []ingest.Chunk
	// Variant identifies the build parameters. A caller that joins an in-flight
	// build of a different variant waits for it and then builds its own.
	Variant string

	// OnStart runs before the existing collection is dropped. An error aborts
	// the build with the old collection untouched.
	OnStart func(ctx context.Context) error
	// OnBuilt runs after all points are stored. An error rolls the build back.
	OnBuilt func(ctx context.Context, stats Stats) error
	// OnRollback runs after a failed build has deleted its collection.
	OnRollback func(ctx context.Context) error
}

type builtVariant struct {
	stats   Stats
	variant string
}

// BuildResult is what each caller of Build receives.
type BuildResult struct {
	Handle *Handle
	Stats  Stats
	// Shared is true when the result came from a build started by another caller.
	Shared bool
}

// Build creates the collection for req and returns a held handle to it.
//
// Builds are single-flight per location and collection: concurrent callers share one build.
// A build never starts for a context that is already done, and once started it runs
// to completion (bounded by the build timeout) even if the caller goes away, so the
// collection is either fully recorded or rolled back.
func (m *Manager) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	if err := ctx.Err(); err != nil {
		return BuildResult{}, err
	}

	detached := context.WithoutCancel(ctx)
	key := req.Location + "/" + req.CollectionID

	var (
		res   singleflight.Result
		built builtVariant
	)
	for attempt := 0; ; attempt++ {
		ch := m.builds.DoChan(key, func() (any, error) {
			buildCtx, cancel := context.WithTimeout(detached, m.buildTimeout)
			defer cancel()
			stats, err := m.build(buildCtx, req)
			return builtVariant{stats: stats, variant: req.Variant}, err
		})

		select {
		case res = <-ch:
		case <-ctx.Done():
			return BuildResult{}, ctx.Err()
		}

		built, _ = res.Val.(builtVariant)
		if !res.Shared || built.variant == req.Variant {
			break
		}
		if attempt == maxVariantRebuilds {
			return BuildResult{}, fmt.Errorf("collection %s is being rebuilt concurrently with other parameters", req.CollectionID)
		}
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "joined build of another variant, rebuilding",
			"collection", req.CollectionID, "variant", req.Variant, "joined", built.variant)
	}
	if res.Err != nil {
		return BuildResult{}, res.Err
	}

	h, err := m.Attach(ctx, req.Location, req.CollectionID, req.Model)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{Handle: h, Stats: built.stats, Shared: res.Shared}, nil
}

func (m *Manager) build(ctx context.Context, req BuildRequest) (stats Stats, err error) {
	ctx, logger := contextutil.LoggerWith(ctx, "collection", req.CollectionID, "model", req.Model)

	if len(req.Chunks) == 0 {
		return Stats{}, ErrNoChunks
	}

	store, err := m.clients.Acquire(ctx, req.Location, m.client(req.Location))
	if err != nil {
		return Stats{}, err
	}
	defer m.clients.Release(req.Location)

	start := time.Now()
	vectors, err := m.embedAll(ctx, m.embedders(req.Model), req.Chunks)
	if err != nil {
		return Stats{}, err
	}
	dim := len(vectors[0])

	if req.OnStart != nil {
		if err := req.OnStart(ctx); err != nil {
			return Stats{}, fmt.Errorf("failed to evict previous build: %w", err)
		}
	}
	defer func() {
		if err != nil {
			m.rollback(ctx, store, req)
		}
	}()

	if err := store.DeleteCollection(ctx, req.CollectionID); err != nil {
		return Stats{}, fmt.Errorf("failed to replace collection: %w", err)
	}
	if err := store.CreateCollection(ctx, req.CollectionID, dim); err != nil {
		return Stats{}, fmt.Errorf("failed to create collection: %w", err)
	}

	for i := 0; i < len(req.Chunks); i += m.batchSize {
		end := min(i+m.batchSize, len(req.Chunks))
		if err := store.Upsert(ctx, req.CollectionID, points(req.CollectionID, req.Chunks[i:end], vectors[i:end])); err != nil {
			return Stats{}, fmt.Errorf("failed to store chunks: %w", err)
		}
	}

	stats = Stats{ChunkCount: len(req.Chunks), VectorSize: dim}
	if req.OnBuilt != nil {
		if err := req.OnBuilt(ctx, stats); err != nil {
			return Stats{}, fmt.Errorf("failed to record build: %w", err)
		}
	}

	logger.InfoContext(ctx, "index built", "chunks", stats.ChunkCount, "vector_size", dim, "duration", time.Since(start))
	return stats, nil
}

func (m *Manager) rollback(ctx context.Context, store vectorstore.VectorStore, req BuildRequest) {
	logger := contextutil.LoggerFromContext(ctx)
	// The build context may be what failed; rollback gets its own budget.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := store.DeleteCollection(ctx, req.CollectionID); err != nil {
		logger.ErrorContext(ctx, "failed to roll back collection", "error", err)
	}
	if req.OnRollback != nil {
		if err := req.OnRollback(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to evict descriptor during rollback", "error", err)
		}
	}
	logger.WarnContext(ctx, "index build rolled back")
}

func (m *Manager) embedAll(ctx context.Context, embedder Embedder, chunks []ingest.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += m.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(i+m.batchSize, len(chunks))
		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			texts = append(texts, c.Text)
		}

		batch, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", i, end-1, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(batch))
		}
		vectors = append(vectors, batch...)
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("embedding backend returned empty vectors")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: embedding %d has size %d, expected %d", vectorstore.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return vectors, nil
}

func points(collection string, chunks []ingest.Chunk, vectors [][]float32) []vectorstore.Point {
	out := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		meta := make(map[string]any, len(c.Metadata)+1)
		for k, v := range c.Metadata {
			meta[k] = v
		}
		meta[payloadText] = c.Text
		out[i] = vectorstore.Point{
			ID:   PointID(collection, c.Index),
			Vec:  vectors[i],
			Meta: meta,
		}
	}
	return out
}

// PointID derives a stable point id from the collection and chunk index.
func PointID(collection string, chunkIndex int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%s:%d", collection, chunkIndex)).String()
}
