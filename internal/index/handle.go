package index

import (
	"context"
	"fmt"

	"assistant-ai/internal/vectorstore"
)

// RetrievedChunk is a chunk returned by a similarity search.
type RetrievedChunk struct {
	Text     string
	Metadata map[string]any
	Score    float32
}

// Handle is an attached collection. It is held from Attach or Build until Release.
type Handle struct {
	key      handleKey
	store    vectorstore.VectorStore
	embedder Embedder
	owner    *Manager
}

// CollectionID returns the collection the handle searches.
func (h *Handle) CollectionID() string {
	return h.key.collection
}

// Search embeds question and returns the k most similar chunks, best first.
func (h *Handle) Search(ctx context.Context, question string, k int) ([]RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0, got %d", k)
	}

	vectors, err := h.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}

	results, err := h.store.Search(ctx, h.key.collection, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", h.key.collection, err)
	}

	chunks := make([]RetrievedChunk, 0, len(results))
	for _, r := range results {
		text, _ := r.Meta[payloadText].(string)
		meta := make(map[string]any, len(r.Meta))
		for key, value := range r.Meta {
			if key != payloadText {
				meta[key] = value
			}
		}
		chunks = append(chunks, RetrievedChunk{Text: text, Metadata: meta, Score: r.Score})
	}
	return chunks, nil
}

// Release drops the caller's hold on the handle.
func (h *Handle) Release() {
	h.owner.handles.Release(h.key)
}

// Close runs at teardown and gives back the client hold taken at attach time.
func (h *Handle) Close() error {
	h.owner.clients.Release(h.key.location)
	return nil
}
