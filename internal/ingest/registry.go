package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Registry dispatches documents to loaders by file extension.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// NewDefaultRegistry registers the text, markdown and PDF loaders.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".txt", NewTextLoader())
	md := NewMarkdownLoader()
	r.Register(".md", md)
	r.Register(".markdown", md)
	r.Register(".pdf", NewPDFLoader())
	return r
}

// Register binds ext (with leading dot, any case) to loader.
func (r *Registry) Register(ext string, loader Loader) {
	r.loaders[strings.ToLower(ext)] = loader
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Load reads path with the loader registered for its extension.
func (r *Registry) Load(ctx context.Context, path string) ([]Unit, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := r.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	units, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return units, nil
}
