package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks assistant-ai/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

var (
	// ErrCollectionNotFound is returned when operating on a collection that does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDimensionMismatch is returned when a vector does not match the collection dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// CreateCollection creates a cosine-distance collection of vectors with dim dimensions.
	CreateCollection(ctx context.Context, collection string, dim int) error

	// DeleteCollection drops a collection. Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, collection string) error

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k points closest to query, best first.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// Close releases the connection.
	Close() error
}
