// Package indexcache decides whether a stored retrieval index can be reused
// for a document and records what each index was built from.
package indexcache

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_gate_deps.go -package=mocks assistant-ai/internal/indexcache Fingerprinter,CollectionLister

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/fingerprint"
)

// Reasons reported in Validity.Reason.
const (
	ReasonHit                = "hit"
	ReasonForceRebuild       = "force_rebuild"
	ReasonNoDescriptor       = "no_descriptor"
	ReasonCorruptDescriptor  = "corrupt_descriptor"
	ReasonFormatVersion      = "format_version"
	ReasonCollectionMissing  = "collection_missing"
	ReasonParamsChanged      = "params_changed"
	ReasonFingerprintChanged = "fingerprint_changed"
	ReasonBackendError       = "backend_error"
)

// Fingerprinter computes document fingerprints.
type Fingerprinter interface {
	Compute(ctx context.Context, path string) (fingerprint.Fingerprint, error)
}

// CollectionLister lists the collections present at a storage location.
type CollectionLister interface {
	ListCollections(ctx context.Context, location string) ([]string, error)
}

// Validity is the outcome of a cache check.
type Validity struct {
	Valid           bool
	CollectionID    string
	PersistLocation string
	DescriptorPath  string
	Fingerprint     fingerprint.Fingerprint
	Reason          string
}

// BuildStats describes a freshly built collection.
type BuildStats struct {
	ChunkCount int
	VectorSize int
}

// Gate checks index validity against persisted descriptors.
type Gate struct {
	fingerprints Fingerprinter
	collections  CollectionLister
	descriptors  DescriptorStore
	location     string
	now          func() time.Time
}

// NewGate creates a gate for indexes stored at location.
func NewGate(fingerprints Fingerprinter, collections CollectionLister, descriptors DescriptorStore, location string) *Gate {
	return &Gate{
		fingerprints: fingerprints,
		collections:  collections,
		descriptors:  descriptors,
		location:     location,
		now:          time.Now,
	}
}

// Location returns the storage location the gate validates against.
func (g *Gate) Location() string {
	return g.location
}

// Check decides whether the index for docPath built with params may be reused.
// The only error is failure to fingerprint the document. Every other
// problem downgrades to a miss with the reason recorded.
func (g *Gate) Check(ctx context.Context, docPath string, params Params, forceRebuild bool) (Validity, error) {
	logger := contextutil.LoggerFromContext(ctx)

	fp, err := g.fingerprints.Compute(ctx, docPath)
	if err != nil {
		return Validity{}, fmt.Errorf("failed to fingerprint document: %w", err)
	}

	collectionID := fingerprint.CollectionID(fp)
	v := Validity{
		CollectionID:    collectionID,
		PersistLocation: g.location,
		DescriptorPath:  g.descriptors.Path(collectionID),
		Fingerprint:     fp,
	}

	v.Reason = g.evaluate(ctx, v, params, forceRebuild)
	v.Valid = v.Reason == ReasonHit

	logger.InfoContext(ctx, "index cache check",
		"collection", collectionID,
		"valid", v.Valid,
		"reason", v.Reason,
	)
	return v, nil
}

func (g *Gate) evaluate(ctx context.Context, v Validity, params Params, forceRebuild bool) string {
	logger := contextutil.LoggerFromContext(ctx)

	if forceRebuild {
		return ReasonForceRebuild
	}

	desc, err := g.descriptors.Load(ctx, v.CollectionID)
	switch {
	case errors.Is(err, ErrDescriptorNotFound):
		return ReasonNoDescriptor
	case errors.Is(err, ErrDescriptorCorrupt):
		logger.WarnContext(ctx, "index descriptor unusable, rebuilding", "collection", v.CollectionID, "error", err)
		return ReasonCorruptDescriptor
	case err != nil:
		logger.WarnContext(ctx, "failed to load index descriptor", "collection", v.CollectionID, "error", err)
		return ReasonCorruptDescriptor
	}

	if desc.FormatVersion != FormatVersion {
		return ReasonFormatVersion
	}

	names, err := g.collections.ListCollections(ctx, g.location)
	if err != nil {
		logger.WarnContext(ctx, "failed to list collections, treating as miss", "location", g.location, "error", err)
		return ReasonBackendError
	}
	if !slices.Contains(names, v.CollectionID) {
		logger.WarnContext(ctx, "descriptor present without collection", "collection", v.CollectionID)
		return ReasonCollectionMissing
	}

	if desc.Params() != params {
		return ReasonParamsChanged
	}
	if !desc.Fingerprint.SameContent(v.Fingerprint) {
		return ReasonFingerprintChanged
	}
	return ReasonHit
}

// Record persists the descriptor for a collection built after a miss.
func (g *Gate) Record(ctx context.Context, v Validity, params Params, stats BuildStats) error {
	d := &Descriptor{
		Fingerprint:    v.Fingerprint,
		ChunkSize:      params.ChunkSize,
		ChunkOverlap:   params.ChunkOverlap,
		EmbeddingModel: params.EmbeddingModel,
		CollectionID:   v.CollectionID,
		FormatVersion:  FormatVersion,
		BuiltAt:        g.now().UTC(),
		ChunkCount:     stats.ChunkCount,
		VectorSize:     stats.VectorSize,
	}
	if err := g.descriptors.Save(ctx, d); err != nil {
		return fmt.Errorf("failed to record index descriptor: %w", err)
	}
	return nil
}

// Invalidate removes the descriptor for collectionID.
func (g *Gate) Invalidate(ctx context.Context, collectionID string) error {
	return g.descriptors.Delete(ctx, collectionID)
}
