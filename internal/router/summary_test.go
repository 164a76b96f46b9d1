package router

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"assistant-ai/internal/fingerprint"
	"assistant-ai/internal/ingest"
)

type fakeSummarizer struct {
	mu          sync.Mutex
	sections    []string
	failSection func(text string) bool
	combineErr  error
	combines    int
}

func (f *fakeSummarizer) SummarizeSection(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSection != nil && f.failSection(text) {
		return "", errors.New("section failed")
	}
	f.sections = append(f.sections, text)
	return "summary:" + text[:5], nil
}

func (f *fakeSummarizer) Combine(_ context.Context, summaries []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.combines++
	if f.combineErr != nil {
		return "", f.combineErr
	}
	return "overview of " + strings.Join(summaries, "|"), nil
}

func paragraphs(n int, prefix string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = prefix + strings.Repeat(string(rune('a'+i%26)), 1990)
	}
	return strings.Join(parts, "\n\n")
}

func newProvider(t *testing.T, s Summarizer) *SummaryProvider {
	t.Helper()
	return NewSummaryProvider(
		ingest.NewDefaultRegistry(),
		ingest.NewRecursiveSplitter(),
		s,
		fingerprint.NewService(fingerprint.NewMemoryStore()),
		"m1",
		time.Hour,
	)
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSummaryProvider_SummarizesFirstTenSections(t *testing.T) {
	s := &fakeSummarizer{}
	p := newProvider(t, s)
	path := writeDoc(t, "long.txt", paragraphs(12, "P"))

	got, err := p.DocumentContext(context.Background(), path)
	if err != nil {
		t.Fatalf("DocumentContext() error = %v", err)
	}
	if len(s.sections) != maxSummaryChunks {
		t.Errorf("sections summarized = %d, want %d", len(s.sections), maxSummaryChunks)
	}
	if !strings.HasPrefix(got, "overview of ") {
		t.Errorf("DocumentContext() = %q", got)
	}
}

func TestSummaryProvider_CachesByContent(t *testing.T) {
	s := &fakeSummarizer{}
	p := newProvider(t, s)
	content := paragraphs(2, "Q")
	first := writeDoc(t, "a.txt", content)
	copyPath := writeDoc(t, "b.txt", content)

	a, err := p.DocumentContext(context.Background(), first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.DocumentContext(context.Background(), copyPath)
	if err != nil {
		t.Fatal(err)
	}
	if a != b || s.combines != 1 {
		t.Errorf("identical content summarized %d times", s.combines)
	}
}

func TestSummaryProvider_SkipsShortAndFailedSections(t *testing.T) {
	s := &fakeSummarizer{failSection: func(text string) bool { return strings.HasPrefix(text, "Fb") }}
	p := newProvider(t, s)
	// Splits into three chunks: a good one, one the summarizer rejects, and a short tail.
	content := paragraphs(1, "F") + "\n\n" + "Fb" + strings.Repeat("x", 1995) + "\n\n" + "tiny"
	path := writeDoc(t, "mixed.txt", content)

	got, err := p.DocumentContext(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.sections) != 1 || !strings.HasPrefix(s.sections[0], "Faaaa") {
		t.Errorf("summarized sections = %d, want only the first", len(s.sections))
	}
	if got != "overview of summary:Faaaa" {
		t.Errorf("DocumentContext() = %q", got)
	}
}

func TestSummaryProvider_NoSummariesIsEmptyAndNotCached(t *testing.T) {
	s := &fakeSummarizer{}
	p := newProvider(t, s)
	path := writeDoc(t, "short.txt", "only a few words")

	for i := 0; i < 2; i++ {
		got, err := p.DocumentContext(context.Background(), path)
		if err != nil || got != "" {
			t.Fatalf("DocumentContext() = %q, %v", got, err)
		}
	}
	if s.combines != 0 {
		t.Errorf("Combine called %d times", s.combines)
	}
	if p.cache.ItemCount() != 0 {
		t.Errorf("empty context cached")
	}
}

func TestSummaryProvider_CombineFailureFallsBack(t *testing.T) {
	s := &fakeSummarizer{combineErr: errors.New("down")}
	p := newProvider(t, s)
	path := writeDoc(t, "doc.txt", paragraphs(3, "C"))

	got, err := p.DocumentContext(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	want := "summary:Caaaa\n\nsummary:Cbbbb\n\nsummary:Ccccc"
	if got != want {
		t.Errorf("DocumentContext() = %q, want %q", got, want)
	}
}

func TestSummaryProvider_Errors(t *testing.T) {
	p := newProvider(t, &fakeSummarizer{})
	if _, err := p.DocumentContext(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing document should fail")
	}
	path := writeDoc(t, "data.csv", "a,b")
	if _, err := p.DocumentContext(context.Background(), path); !errors.Is(err, ingest.ErrUnsupportedFormat) {
		t.Errorf("unsupported document error = %v", err)
	}
}

// stallingSummarizer blocks its first section until that caller's ctx ends.
type stallingSummarizer struct {
	fakeSummarizer
	once    sync.Once
	entered chan struct{}
}

func (s *stallingSummarizer) SummarizeSection(ctx context.Context, text string) (string, error) {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.fakeSummarizer.SummarizeSection(ctx, text)
}

func TestSummaryProvider_JoinerSurvivesLeaderCancellation(t *testing.T) {
	s := &stallingSummarizer{entered: make(chan struct{})}
	p := newProvider(t, s)
	doc := writeDoc(t, "report.txt", paragraphs(2, "Section "))

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := p.DocumentContext(leaderCtx, doc)
		leaderErr <- err
	}()
	<-s.entered

	type result struct {
		overview string
		err      error
	}
	joiner := make(chan result, 1)
	go func() {
		overview, err := p.DocumentContext(context.Background(), doc)
		joiner <- result{overview, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelLeader()

	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("leader DocumentContext() error = %v, want canceled", err)
	}
	got := <-joiner
	if got.err != nil {
		t.Fatalf("joiner DocumentContext() error = %v", got.err)
	}
	if !strings.HasPrefix(got.overview, "overview of ") {
		t.Errorf("joiner overview = %q", got.overview)
	}
}
