package indexcache

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_descriptor_store.go -package=mocks assistant-ai/internal/indexcache DescriptorStore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"assistant-ai/internal/fingerprint"
)

// FormatVersion tags descriptors written by this package.
// Descriptors carrying any other tag are treated as absent.
const FormatVersion = "v2"

const descriptorFile = "meta.json"

var (
	// ErrDescriptorNotFound means no descriptor was ever written for the collection.
	ErrDescriptorNotFound = errors.New("index descriptor not found")
	// ErrDescriptorCorrupt means a descriptor exists but cannot be used.
	ErrDescriptorCorrupt = errors.New("index descriptor corrupt")
)

// Params are the build parameters a stored index must match.
type Params struct {
	ChunkSize      int    `json:"chunk_size"`
	ChunkOverlap   int    `json:"chunk_overlap"`
	EmbeddingModel string `json:"embedding_model"`
}

// Validate checks the build parameter constraints.
func (p Params) Validate() error {
	if p.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be greater than 0, got %d", p.ChunkSize)
	}
	if p.ChunkOverlap < 0 || p.ChunkOverlap >= p.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, %d), got %d", p.ChunkSize, p.ChunkOverlap)
	}
	if p.EmbeddingModel == "" {
		return fmt.Errorf("embedding model is required")
	}
	return nil
}

// Descriptor records what a stored index collection was built from.
type Descriptor struct {
	Fingerprint    fingerprint.Fingerprint `json:"fingerprint"`
	ChunkSize      int                     `json:"chunk_size"`
	ChunkOverlap   int                     `json:"chunk_overlap"`
	EmbeddingModel string                  `json:"embedding_model"`
	CollectionID   string                  `json:"collection_id"`
	FormatVersion  string                  `json:"format"`
	BuiltAt        time.Time               `json:"built_at"`
	ChunkCount     int                     `json:"chunk_count"`
	VectorSize     int                     `json:"vector_size"`
}

// Params returns the build parameters recorded in the descriptor.
func (d *Descriptor) Params() Params {
	return Params{ChunkSize: d.ChunkSize, ChunkOverlap: d.ChunkOverlap, EmbeddingModel: d.EmbeddingModel}
}

// DescriptorStore persists one descriptor per collection.
type DescriptorStore interface {
	// Load returns ErrDescriptorNotFound when absent and an error wrapping
	// ErrDescriptorCorrupt when present but unusable.
	Load(ctx context.Context, collectionID string) (*Descriptor, error)
	// Save replaces the descriptor for d.CollectionID wholesale.
	Save(ctx context.Context, d *Descriptor) error
	// Delete removes the descriptor. Absent descriptors are not an error.
	Delete(ctx context.Context, collectionID string) error
	// Path returns where the descriptor for collectionID lives.
	Path(collectionID string) string
}

// FileDescriptorStore keeps descriptors as JSON files under Root/<collectionID>/meta.json.
type FileDescriptorStore struct {
	Root string
}

// NewFileDescriptorStore creates a store rooted at root.
func NewFileDescriptorStore(root string) *FileDescriptorStore {
	return &FileDescriptorStore{Root: root}
}

func (s *FileDescriptorStore) Path(collectionID string) string {
	return filepath.Join(s.Root, collectionID, descriptorFile)
}

func (s *FileDescriptorStore) Load(_ context.Context, collectionID string) (*Descriptor, error) {
	data, err := os.ReadFile(s.Path(collectionID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrDescriptorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptorCorrupt, err)
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptorCorrupt, err)
	}
	if d.CollectionID != collectionID {
		return nil, fmt.Errorf("%w: descriptor names collection %q", ErrDescriptorCorrupt, d.CollectionID)
	}
	return &d, nil
}

func (s *FileDescriptorStore) Save(_ context.Context, d *Descriptor) error {
	if d.CollectionID == "" {
		return fmt.Errorf("descriptor collection id is required")
	}
	dir := filepath.Dir(s.Path(d.CollectionID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create descriptor directory: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}

	tmp, err := os.CreateTemp(dir, descriptorFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create descriptor temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync descriptor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close descriptor: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(d.CollectionID)); err != nil {
		return fmt.Errorf("failed to replace descriptor: %w", err)
	}
	return nil
}

func (s *FileDescriptorStore) Delete(_ context.Context, collectionID string) error {
	err := os.Remove(s.Path(collectionID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete descriptor: %w", err)
	}
	return nil
}
