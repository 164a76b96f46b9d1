package workflow

import (
	"context"
	"errors"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"assistant-ai/internal/fingerprint"
	"assistant-ai/internal/index"
	"assistant-ai/internal/indexcache"
	"assistant-ai/internal/ingest"
	"assistant-ai/internal/llm"
	"assistant-ai/internal/router"
	"assistant-ai/internal/vectorstore"
	"assistant-ai/internal/weather"
	weather_mocks "assistant-ai/internal/weather/mocks"
	workflow_mocks "assistant-ai/internal/workflow/mocks"
)

const embedDim = 16

// wordEmbedder hashes words into a fixed number of buckets.
type wordEmbedder struct {
	calls atomic.Int32
}

func (e *wordEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, embedDim)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			vec[h.Sum32()%embedDim]++
		}
		vec[embedDim-1] += 0.01
		out[i] = vec
	}
	return out, nil
}

type harness struct {
	engine    *Engine
	gate      *indexcache.Gate
	router    *workflow_mocks.MockRouter
	generator *workflow_mocks.MockAnswerGenerator
	extractor *weather_mocks.MockLocationExtractor
	provider  *weather_mocks.MockProvider
	embedder  *wordEmbedder
	docs      string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, vectorstore.NewMemoryStore())
}

func newHarnessWithStore(t *testing.T, store vectorstore.VectorStore) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	emb := &wordEmbedder{}
	manager := index.NewManager(
		func(context.Context, string) (vectorstore.VectorStore, error) { return store, nil },
		func(string) index.Embedder { return emb },
	)
	t.Cleanup(func() {
		if err := manager.Teardown(context.Background()); err != nil {
			t.Errorf("Teardown() error = %v", err)
		}
	})

	gate := indexcache.NewGate(
		fingerprint.NewService(fingerprint.NewMemoryStore()),
		manager,
		indexcache.NewFileDescriptorStore(t.TempDir()),
		"memory://test",
	)

	h := &harness{
		gate:      gate,
		router:    workflow_mocks.NewMockRouter(ctrl),
		generator: workflow_mocks.NewMockAnswerGenerator(ctrl),
		extractor: weather_mocks.NewMockLocationExtractor(ctrl),
		provider:  weather_mocks.NewMockProvider(ctrl),
		embedder:  emb,
		docs:      t.TempDir(),
	}
	h.engine = NewEngine(
		h.router,
		gate,
		ingest.NewDefaultRegistry(),
		ingest.NewRecursiveSplitter(),
		manager,
		h.generator,
		weather.NewHandler(h.extractor, h.provider, nil),
		5*time.Second,
	)
	return h
}

func (h *harness) writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(h.docs, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}
	return p
}

func reportText() string {
	sections := []string{
		"Section 1. Introduction. " + strings.Repeat("The company sells garden tools across the region. ", 12),
		"Section 2. Revenue. " + strings.Repeat("Revenue grew twelve percent driven by online orders. ", 12),
		"Section 3. Outlook. " + strings.Repeat("Next year the company plans two new warehouses. ", 12),
	}
	return strings.Join(sections, "\n\n")
}

func params(model string) indexcache.Params {
	return indexcache.Params{ChunkSize: 1000, ChunkOverlap: 150, EmbeddingModel: model}
}

// assertTrace checks the trace step by step against expected prefixes.
func assertTrace(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("trace = %q, want %d steps", got, len(want))
	}
	for i := range want {
		if !strings.HasPrefix(got[i], want[i]) {
			t.Errorf("trace[%d] = %q, want prefix %q", i, got[i], want[i])
		}
	}
}

func expectRAG(h *harness, question, doc string, times int) {
	h.router.EXPECT().Route(gomock.Any(), question, doc).
		Return(router.Decision{Intent: router.IntentRAG, Reason: router.ReasonClassified}).Times(times)
	h.generator.EXPECT().Generate(gomock.Any(), question, gomock.Any()).
		Return("Section 2 covers revenue growth.", nil).Times(times)
}

func TestEngine_DocumentQuestionBuildsThenHitsCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doc := h.writeDoc(t, "report.txt", reportText())
	req := Request{Question: "Summarize section 2", DocPath: doc, Params: params("m1"), K: 4}

	h.router.EXPECT().Route(gomock.Any(), req.Question, doc).
		Return(router.Decision{Intent: router.IntentRAG, Reason: router.ReasonClassified}).Times(2)
	h.generator.EXPECT().Generate(gomock.Any(), req.Question, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, contextText string) (string, error) {
			if !strings.Contains(contextText, "--- Context from document ---") || !strings.Contains(contextText, "File: report.txt") {
				t.Errorf("context not formatted: %q", contextText)
			}
			return "Section 2 covers revenue growth.", nil
		}).Times(2)

	first := h.engine.Run(ctx, req)
	if first.Error != nil {
		t.Fatalf("first Run() error = %+v", first.Error)
	}
	assertTrace(t, first.Trace,
		"🧭 Routed to: RAG agent",
		"✗ No valid cache found (no_descriptor)",
		"✓ Loaded report.txt (1 sections)",
		"✓ Split into",
		"✓ Built and saved new index",
		"✓ Retrieved",
		"✓ Generated answer",
	)
	if first.Intent != router.IntentRAG || first.Answer != "Section 2 covers revenue growth." {
		t.Errorf("first result = %q / %q", first.Intent, first.Answer)
	}
	if first.Metadata["cache_hit"] != false {
		t.Errorf("cache_hit = %v, want false", first.Metadata["cache_hit"])
	}
	if _, ok := first.Metadata["chunk_stats"].(ingest.ChunkStats); !ok {
		t.Errorf("chunk_stats missing: %v", first.Metadata)
	}
	collectionID, _ := first.Metadata["collection_id"].(string)
	if !strings.HasPrefix(collectionID, "doc_") {
		t.Errorf("collection_id = %q", collectionID)
	}
	callsAfterBuild := h.embedder.calls.Load()

	second := h.engine.Run(ctx, req)
	if second.Error != nil {
		t.Fatalf("second Run() error = %+v", second.Error)
	}
	assertTrace(t, second.Trace,
		"🧭 Routed to: RAG agent",
		"✓ Found valid cached index",
		"⚡ Loaded cached index (fast path)",
		"✓ Retrieved",
		"✓ Generated answer",
	)
	if second.Metadata["cache_hit"] != true || second.Metadata["collection_id"] != collectionID {
		t.Errorf("second metadata = %v", second.Metadata)
	}
	// Only the question is embedded on a hit.
	if got := h.embedder.calls.Load() - callsAfterBuild; got != 1 {
		t.Errorf("embed calls on hit = %d, want 1", got)
	}
	sources, ok := second.Metadata["sources"].([]Source)
	if !ok || len(sources) == 0 || len(sources) > 4 {
		t.Errorf("sources = %v", second.Metadata["sources"])
	}
}

func TestEngine_ChangedParamsMiss(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doc := h.writeDoc(t, "report.txt", reportText())
	question := "What happened to revenue?"
	expectRAG(h, question, doc, 4)

	reasons := []string{}
	for _, p := range []indexcache.Params{
		params("m1"),
		{ChunkSize: 500, ChunkOverlap: 50, EmbeddingModel: "m1"},
		params("m2"),
		params("m2"),
	} {
		res := h.engine.Run(ctx, Request{Question: question, DocPath: doc, Params: p, K: 2})
		if res.Error != nil {
			t.Fatalf("Run(%+v) error = %+v", p, res.Error)
		}
		reasons = append(reasons, res.Metadata["cache_reason"].(string))
	}

	want := []string{indexcache.ReasonNoDescriptor, indexcache.ReasonParamsChanged, indexcache.ReasonParamsChanged, indexcache.ReasonHit}
	for i := range want {
		if reasons[i] != want[i] {
			t.Errorf("reasons = %v, want %v", reasons, want)
			break
		}
	}
}

func TestEngine_ForceRebuildMissesValidCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doc := h.writeDoc(t, "report.txt", reportText())
	question := "Summarize section 2"
	expectRAG(h, question, doc, 3)

	req := Request{Question: question, DocPath: doc, Params: params("m1"), K: 4}
	if res := h.engine.Run(ctx, req); res.Error != nil {
		t.Fatalf("Run() error = %+v", res.Error)
	}

	forced := req
	forced.ForceRebuild = true
	res := h.engine.Run(ctx, forced)
	if res.Error != nil {
		t.Fatalf("forced Run() error = %+v", res.Error)
	}
	if res.Metadata["cache_hit"] != false || res.Metadata["cache_reason"] != indexcache.ReasonForceRebuild {
		t.Errorf("forced metadata = %v", res.Metadata)
	}
	assertTrace(t, res.Trace, "🧭", "✗ No valid cache found (force_rebuild)", "✓ Loaded", "✓ Split", "✓ Built", "✓ Retrieved", "✓ Generated")

	if res := h.engine.Run(ctx, req); res.Metadata["cache_hit"] != true {
		t.Errorf("after forced rebuild cache_hit = %v, want true", res.Metadata["cache_hit"])
	}
}

func TestEngine_Weather(t *testing.T) {
	report := &weather.Report{Temp: 31.5, FeelsLike: 33, Humidity: 40, Description: "clear sky", WindSpeed: 3.6, Raw: []byte(`{"name":"Jaipur"}`)}

	tests := []struct {
		name        string
		question    string
		location    llm.Location
		fetchCity   string
		fetchErr    error
		wantSuccess bool
		wantAnswer  string
		wantStep    string
	}{
		{
			name:        "city and state",
			question:    "What's the weather in Jaipur?",
			location:    llm.Location{City: "Jaipur", State: "Rajasthan"},
			fetchCity:   "Jaipur",
			wantSuccess: true,
			wantAnswer:  "**Temperature:** 31.5°C",
			wantStep:    "✓ Fetched weather for Jaipur, Rajasthan",
		},
		{
			name:       "fetch failure",
			question:   "What's the weather in Jaipur?",
			location:   llm.Location{City: "Jaipur", State: "Rajasthan"},
			fetchCity:  "Jaipur",
			fetchErr:   errors.New("bad status 500"),
			wantAnswer: "Jaipur",
			wantStep:   "❌ Weather API failed for Jaipur, Rajasthan",
		},
		{
			name:        "region only",
			question:    "What's the weather in Rajasthan?",
			location:    llm.Location{State: "Rajasthan"},
			fetchCity:   "Jaipur",
			wantSuccess: true,
			wantAnswer:  "Weather in Jaipur",
			wantStep:    "✓ Fetched weather for Jaipur, Rajasthan",
		},
		{
			name:       "no city",
			question:   "Is it going to rain?",
			wantAnswer: "Please specify a city name.",
			wantStep:   "❌ No city found in query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.router.EXPECT().Route(gomock.Any(), tt.question, "").
				Return(router.Decision{Intent: router.IntentWeather, Reason: router.ReasonWeatherKeyword})
			h.extractor.EXPECT().ExtractLocation(gomock.Any(), tt.question).Return(tt.location, nil)
			if tt.fetchCity != "" {
				if tt.fetchErr != nil {
					h.provider.EXPECT().Fetch(gomock.Any(), tt.fetchCity, "Rajasthan").Return(nil, tt.fetchErr)
				} else {
					h.provider.EXPECT().Fetch(gomock.Any(), tt.fetchCity, "Rajasthan").Return(report, nil)
				}
			}

			res := h.engine.Run(context.Background(), Request{Question: tt.question, Params: params("m1"), K: 4})

			if res.Error != nil {
				t.Fatalf("Run() error = %+v", res.Error)
			}
			if res.Intent != router.IntentWeather {
				t.Errorf("Intent = %q", res.Intent)
			}
			if !strings.Contains(res.Answer, tt.wantAnswer) {
				t.Errorf("Answer = %q, want containing %q", res.Answer, tt.wantAnswer)
			}
			assertTrace(t, res.Trace, "🧭 Routed to: WEATHER agent", tt.wantStep)
			if res.Metadata["success"] != tt.wantSuccess {
				t.Errorf("success = %v, want %v", res.Metadata["success"], tt.wantSuccess)
			}
			if tt.wantSuccess && res.Metadata["temperature"] != 31.5 {
				t.Errorf("temperature = %v", res.Metadata["temperature"])
			}
			if _, ok := res.Metadata["cache_hit"]; ok {
				t.Error("document metadata present on weather result")
			}
		})
	}
}

func TestEngine_Unknown(t *testing.T) {
	t.Run("document question without document", func(t *testing.T) {
		h := newHarness(t)
		h.router.EXPECT().Route(gomock.Any(), "Summarize it", "").
			Return(router.Decision{Intent: router.IntentRAG, Reason: router.ReasonClassified})

		res := h.engine.Run(context.Background(), Request{Question: "Summarize it", Params: params("m1"), K: 4})

		if res.Intent != router.IntentUnknown || res.Error != nil {
			t.Fatalf("result = %+v", res)
		}
		assertTrace(t, res.Trace, "🧭 Routed to: RAG agent", "❓ Document question without a document")
		if !strings.Contains(res.Answer, "✗ No document") || !strings.Contains(res.Answer, "Weather Information") {
			t.Errorf("Answer = %q", res.Answer)
		}
		if res.Metadata["document_available"] != false || res.Metadata["classified_intent"] != "rag" {
			t.Errorf("metadata = %v", res.Metadata)
		}
		if h.embedder.calls.Load() != 0 {
			t.Error("retrieval attempted without a document")
		}
	})

	t.Run("unclassifiable with document", func(t *testing.T) {
		h := newHarness(t)
		doc := h.writeDoc(t, "report.txt", reportText())
		h.router.EXPECT().Route(gomock.Any(), "Tell me a joke", doc).
			Return(router.Decision{Intent: router.IntentUnknown, Reason: router.ReasonClassified})

		res := h.engine.Run(context.Background(), Request{Question: "Tell me a joke", DocPath: doc, Params: params("m1"), K: 4})

		assertTrace(t, res.Trace, "🧭 Routed to: UNKNOWN agent", "❓ Unknown query type")
		if !strings.Contains(res.Answer, "✓ Document loaded") || res.Metadata["document_available"] != true {
			t.Errorf("result = %+v", res)
		}
	})
}

func TestEngine_IngestionFailures(t *testing.T) {
	tests := []struct {
		name      string
		doc       func(h *harness, t *testing.T) string
		wantStage string
	}{
		{
			name:      "missing document",
			doc:       func(h *harness, _ *testing.T) string { return filepath.Join(h.docs, "gone.pdf") },
			wantStage: "CHECK_CACHE",
		},
		{
			name:      "unsupported format",
			doc:       func(h *harness, t *testing.T) string { return h.writeDoc(t, "report.docx", "binary") },
			wantStage: "INGEST",
		},
		{
			name:      "empty document",
			doc:       func(h *harness, t *testing.T) string { return h.writeDoc(t, "empty.txt", "") },
			wantStage: "SPLIT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			doc := tt.doc(h, t)
			h.router.EXPECT().Route(gomock.Any(), "q", doc).Return(router.Decision{Intent: router.IntentRAG})

			res := h.engine.Run(context.Background(), Request{Question: "q", DocPath: doc, Params: params("m1"), K: 4})

			if res.Error == nil {
				t.Fatalf("Run() error = nil, result = %+v", res)
			}
			if res.Error.Kind != KindIngestion || res.Error.Stage != tt.wantStage {
				t.Errorf("Error = %+v, want ingestion at %s", res.Error, tt.wantStage)
			}
			if !strings.HasPrefix(res.Answer, "I couldn't read the document") {
				t.Errorf("Answer = %q", res.Answer)
			}
			if last := res.Trace[len(res.Trace)-1]; !strings.HasPrefix(last, "❌ "+tt.wantStage+" failed") {
				t.Errorf("last step = %q", last)
			}
		})
	}
}

func TestEngine_GenerationFailure(t *testing.T) {
	h := newHarness(t)
	doc := h.writeDoc(t, "report.txt", reportText())
	h.router.EXPECT().Route(gomock.Any(), "q", doc).Return(router.Decision{Intent: router.IntentRAG})
	h.generator.EXPECT().Generate(gomock.Any(), "q", gomock.Any()).Return("", errors.New("model overloaded"))

	res := h.engine.Run(context.Background(), Request{Question: "q", DocPath: doc, Params: params("m1"), K: 4})

	if res.Error == nil || res.Error.Kind != KindGeneration {
		t.Fatalf("Error = %+v, want generation", res.Error)
	}
	if strings.Contains(res.Answer, "revenue") {
		t.Errorf("partial answer leaked: %q", res.Answer)
	}
}

type mockEngine struct {
	engine  *Engine
	router  *workflow_mocks.MockRouter
	gate    *workflow_mocks.MockCacheGate
	loader  *workflow_mocks.MockLoader
	indexer *workflow_mocks.MockIndexer
}

func newMockEngine(t *testing.T, stageTimeout time.Duration) *mockEngine {
	ctrl := gomock.NewController(t)
	m := &mockEngine{
		router:  workflow_mocks.NewMockRouter(ctrl),
		gate:    workflow_mocks.NewMockCacheGate(ctrl),
		loader:  workflow_mocks.NewMockLoader(ctrl),
		indexer: workflow_mocks.NewMockIndexer(ctrl),
	}
	m.engine = NewEngine(m.router, m.gate, m.loader, ingest.NewRecursiveSplitter(), m.indexer,
		workflow_mocks.NewMockAnswerGenerator(ctrl), workflow_mocks.NewMockWeatherHandler(ctrl), stageTimeout)
	return m
}

func (m *mockEngine) expectMiss(doc string) indexcache.Validity {
	v := indexcache.Validity{CollectionID: "doc_x", PersistLocation: "memory://test", Reason: indexcache.ReasonNoDescriptor}
	m.router.EXPECT().Route(gomock.Any(), "q", doc).Return(router.Decision{Intent: router.IntentRAG})
	m.gate.EXPECT().Check(gomock.Any(), doc, params("m1"), false).Return(v, nil)
	m.loader.EXPECT().Load(gomock.Any(), doc).Return([]ingest.Unit{{Text: "cats and dogs", Metadata: map[string]any{}}}, nil)
	return v
}

func TestEngine_BuildWiresDescriptorCallbacks(t *testing.T) {
	m := newMockEngine(t, time.Second)
	v := m.expectMiss("/d.txt")

	m.gate.EXPECT().Record(gomock.Any(), v, params("m1"), indexcache.BuildStats{ChunkCount: 1, VectorSize: 3}).Return(nil)
	m.gate.EXPECT().Invalidate(gomock.Any(), "doc_x").Return(nil).Times(2)
	m.indexer.EXPECT().Build(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, req index.BuildRequest) (index.BuildResult, error) {
		if req.CollectionID != "doc_x" || req.Location != "memory://test" || req.Model != "m1" || len(req.Chunks) != 1 {
			t.Errorf("BuildRequest = %+v", req)
		}
		if req.Variant != "1000/150/m1" {
			t.Errorf("Variant = %q", req.Variant)
		}
		if err := req.OnStart(ctx); err != nil {
			t.Errorf("OnStart() error = %v", err)
		}
		if err := req.OnBuilt(ctx, index.Stats{ChunkCount: 1, VectorSize: 3}); err != nil {
			t.Errorf("OnBuilt() error = %v", err)
		}
		if err := req.OnRollback(ctx); err != nil {
			t.Errorf("OnRollback() error = %v", err)
		}
		return index.BuildResult{}, errors.New("upsert failed")
	})

	res := m.engine.Run(context.Background(), Request{Question: "q", DocPath: "/d.txt", Params: params("m1"), K: 4})

	if res.Error == nil || res.Error.Kind != KindBuild || res.Error.Stage != "BUILD_INDEX" {
		t.Fatalf("Error = %+v, want build failure", res.Error)
	}
	if res.Answer != "I couldn't index the document. Please try again." {
		t.Errorf("Answer = %q", res.Answer)
	}
}

func TestEngine_StageTimeout(t *testing.T) {
	m := newMockEngine(t, 20*time.Millisecond)
	m.expectMiss("/d.txt")
	m.indexer.EXPECT().Build(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ index.BuildRequest) (index.BuildResult, error) {
		<-ctx.Done()
		return index.BuildResult{}, ctx.Err()
	})

	res := m.engine.Run(context.Background(), Request{Question: "q", DocPath: "/d.txt", Params: params("m1"), K: 4})

	if res.Error == nil || res.Error.Kind != KindTimeout || res.Error.Stage != "BUILD_INDEX" {
		t.Fatalf("Error = %+v, want timeout in BUILD_INDEX", res.Error)
	}
}

func TestEngine_Cancellation(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		m := newMockEngine(t, time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := m.engine.Run(ctx, Request{Question: "q"})

		if res.Error == nil || res.Error.Kind != KindCanceled || res.Error.Stage != "START" {
			t.Fatalf("Error = %+v", res.Error)
		}
		if res.Intent != router.IntentUnknown {
			t.Errorf("Intent = %q", res.Intent)
		}
	})

	t.Run("between stages", func(t *testing.T) {
		m := newMockEngine(t, time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		m.router.EXPECT().Route(gomock.Any(), "q", "/d.txt").DoAndReturn(func(context.Context, string, string) router.Decision {
			cancel()
			return router.Decision{Intent: router.IntentRAG}
		})

		res := m.engine.Run(ctx, Request{Question: "q", DocPath: "/d.txt", Params: params("m1"), K: 4})

		if res.Error == nil || res.Error.Kind != KindCanceled || res.Error.Stage != "CHECK_CACHE" {
			t.Fatalf("Error = %+v, want canceled before CHECK_CACHE", res.Error)
		}
	})
}

func TestStageFailure_Classification(t *testing.T) {
	active := context.Background()
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		parent context.Context
		err    error
		want   Kind
	}{
		{name: "plain error keeps kind", parent: active, err: errors.New("boom"), want: KindRetrieval},
		{name: "stage deadline", parent: active, err: context.DeadlineExceeded, want: KindTimeout},
		{name: "wrapped deadline", parent: active, err: errors.Join(errors.New("search"), context.DeadlineExceeded), want: KindTimeout},
		{name: "parent canceled", parent: canceled, err: errors.New("boom"), want: KindCanceled},
	}
	for _, tt := range tests {
		got := stageFailure(tt.parent, StateRetrieve, KindRetrieval, tt.err)
		if got.Kind != tt.want {
			t.Errorf("%s: Kind = %s, want %s", tt.name, got.Kind, tt.want)
		}
		if !errors.Is(got, tt.err) {
			t.Errorf("%s: StageError does not wrap cause", tt.name)
		}
	}
}

func TestEngine_Warm(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doc := h.writeDoc(t, "report.txt", reportText())

	first, err := h.engine.Warm(ctx, doc, params("m1"), false)
	if err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if first.CacheHit || first.CacheReason != indexcache.ReasonNoDescriptor || first.ChunkStats == nil {
		t.Errorf("first Warm() = %+v", first)
	}
	assertTrace(t, first.Trace, "✗ No valid cache found", "✓ Loaded", "✓ Split", "✓ Built and saved new index")

	second, err := h.engine.Warm(ctx, doc, params("m1"), false)
	if err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if !second.CacheHit || second.CollectionID != first.CollectionID {
		t.Errorf("second Warm() = %+v", second)
	}
	assertTrace(t, second.Trace, "✓ Found valid cached index")

	forced, err := h.engine.Warm(ctx, doc, params("m1"), true)
	if err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if forced.CacheHit || forced.CacheReason != indexcache.ReasonForceRebuild {
		t.Errorf("forced Warm() = %+v", forced)
	}

	_, err = h.engine.Warm(ctx, filepath.Join(h.docs, "missing.txt"), params("m1"), false)
	var serr *StageError
	if !errors.As(err, &serr) || serr.Kind != KindIngestion {
		t.Errorf("Warm(missing) error = %v, want ingestion StageError", err)
	}
}

// stallingStore parks Upsert once armed until release is closed.
type stallingStore struct {
	*vectorstore.MemoryStore
	armed   atomic.Bool
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *stallingStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if s.armed.Load() {
		s.once.Do(func() { close(s.entered) })
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.MemoryStore.Upsert(ctx, collection, points)
}

func TestEngine_RebuildEvictsDescriptorBeforeDroppingCollection(t *testing.T) {
	ctx := context.Background()
	store := &stallingStore{
		MemoryStore: vectorstore.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	h := newHarnessWithStore(t, store)
	doc := h.writeDoc(t, "report.txt", reportText())

	if _, err := h.engine.Warm(ctx, doc, params("m1"), false); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if v, err := h.gate.Check(ctx, doc, params("m1"), false); err != nil || !v.Valid {
		t.Fatalf("Check() after build = %+v, %v; want hit", v, err)
	}

	store.armed.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := h.engine.Warm(ctx, doc, params("m1"), true)
		done <- err
	}()

	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("rebuild never reached upsert")
	}

	v, err := h.gate.Check(ctx, doc, params("m1"), false)
	if err != nil {
		t.Fatalf("Check() during rebuild error = %v", err)
	}
	if v.Valid || v.Reason != indexcache.ReasonNoDescriptor {
		t.Errorf("Check() during rebuild = valid %v reason %q, want no_descriptor miss", v.Valid, v.Reason)
	}

	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("forced Warm() error = %v", err)
	}
	if v, err := h.gate.Check(ctx, doc, params("m1"), false); err != nil || !v.Valid {
		t.Errorf("Check() after rebuild = %+v, %v; want hit", v, err)
	}
}
