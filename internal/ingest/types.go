// Package ingest turns documents into overlapping text chunks.
package ingest

import (
	"context"
	"errors"
)

// ErrUnsupportedFormat is returned for documents no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Metadata keys attached to units and chunks.
const (
	MetaSource      = "source"
	MetaPage        = "page"
	MetaTotalPages  = "total_pages"
	MetaHeadingPath = "heading_path"
	MetaTitle       = "title"
	MetaChunkIndex  = "chunk_index"
)

// Unit is one loaded span of a document (a page, a section, a whole file).
type Unit struct {
	Text     string
	Metadata map[string]any
}

// Chunk is a split piece of a unit, ready for embedding.
type Chunk struct {
	Index    int
	Text     string
	Metadata map[string]any
}

// Loader reads a document into ordered text units.
type Loader interface {
	Load(ctx context.Context, path string) ([]Unit, error)
}
