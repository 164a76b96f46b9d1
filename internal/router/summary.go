package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/fingerprint"
	"assistant-ai/internal/ingest"
)

const (
	summaryChunkSize    = 2000
	summaryChunkOverlap = 200
	maxSummaryChunks    = 10
	minSummaryChunkLen  = 100
	fallbackContextLen  = 1000
)

// Loader reads a document into text units.
type Loader interface {
	Load(ctx context.Context, path string) ([]ingest.Unit, error)
}

// Splitter splits units into chunks.
type Splitter interface {
	Split(units []ingest.Unit, chunkSize, chunkOverlap int) ([]ingest.Chunk, error)
}

// Summarizer condenses text.
type Summarizer interface {
	SummarizeSection(ctx context.Context, text string) (string, error)
	Combine(ctx context.Context, summaries []string) (string, error)
}

// Fingerprinter identifies document content.
type Fingerprinter interface {
	Compute(ctx context.Context, path string) (fingerprint.Fingerprint, error)
}

// SummaryProvider builds a document overview from its leading sections and
// caches it by content hash and model, so renamed copies share one summary.
type SummaryProvider struct {
	loader       Loader
	splitter     Splitter
	summarizer   Summarizer
	fingerprints Fingerprinter
	model        string

	cache  *gocache.Cache
	flight singleflight.Group
}

// NewSummaryProvider creates a SummaryProvider whose entries live for ttl.
func NewSummaryProvider(loader Loader, splitter Splitter, summarizer Summarizer, fingerprints Fingerprinter, model string, ttl time.Duration) *SummaryProvider {
	return &SummaryProvider{
		loader:       loader,
		splitter:     splitter,
		summarizer:   summarizer,
		fingerprints: fingerprints,
		model:        model,
		cache:        gocache.New(ttl, 2*ttl),
	}
}

// DocumentContext returns the cached overview for the document, building it on a miss.
// An empty string means no meaningful context could be derived.
func (p *SummaryProvider) DocumentContext(ctx context.Context, docPath string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	fp, err := p.fingerprints.Compute(ctx, docPath)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint document: %w", err)
	}
	key := fp.ContentHash + ":" + p.model

	if cached, ok := p.cache.Get(key); ok {
		logger.DebugContext(ctx, "using cached document summary", "document", docPath)
		return cached.(string), nil
	}

	for {
		v, err, shared := p.flight.Do(key, func() (any, error) {
			summary, err := p.summarize(ctx, docPath)
			if err != nil {
				return "", err
			}
			// Empty summaries are not cached so a recovering backend gets another chance.
			if summary != "" {
				p.cache.SetDefault(key, summary)
			}
			return summary, nil
		})
		// A joined call that failed on the leader's cancellation is retried under our own ctx.
		if err != nil && shared && ctx.Err() == nil &&
			(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			continue
		}
		if err != nil {
			return "", err
		}
		return v.(string), nil
	}
}

func (p *SummaryProvider) summarize(ctx context.Context, docPath string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	units, err := p.loader.Load(ctx, docPath)
	if err != nil {
		return "", fmt.Errorf("failed to load document: %w", err)
	}
	chunks, err := p.splitter.Split(units, summaryChunkSize, summaryChunkOverlap)
	if err != nil {
		return "", fmt.Errorf("failed to split document: %w", err)
	}

	var summaries []string
	for i, chunk := range chunks[:min(maxSummaryChunks, len(chunks))] {
		text := strings.TrimSpace(chunk.Text)
		if len([]rune(text)) < minSummaryChunkLen {
			continue
		}
		summary, err := p.summarizer.SummarizeSection(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			logger.WarnContext(ctx, "section summary failed, skipping", "chunk", i, "error", err)
			continue
		}
		summaries = append(summaries, summary)
	}
	if len(summaries) == 0 {
		return "", nil
	}

	overview, err := p.summarizer.Combine(ctx, summaries)
	if err != nil {
		logger.WarnContext(ctx, "combining summaries failed, using partial summaries", "error", err)
		return truncate(strings.Join(summaries, "\n\n"), fallbackContextLen), nil
	}
	logger.InfoContext(ctx, "document summary generated", "document", docPath, "sections", len(summaries))
	return overview, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
