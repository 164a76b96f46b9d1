package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/index"
	"assistant-ai/internal/indexcache"
	"assistant-ai/internal/ingest"
	"assistant-ai/internal/router"
)

func (e *Engine) route(ctx context.Context, run *Run) {
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	d := e.router.Route(stageCtx, run.Request.Question, run.Request.DocPath)
	run.Decision = d
	run.Intent = d.Intent
	run.step("🧭 Routed to: %s agent", strings.ToUpper(string(d.Intent)))

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "question routed", "intent", d.Intent, "reason", d.Reason)
}

func (e *Engine) checkCache(ctx context.Context, run *Run) *StageError {
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	run.Rag = &RagState{}
	req := run.Request
	v, err := e.gate.Check(stageCtx, req.DocPath, req.Params, req.ForceRebuild)
	if err != nil {
		return stageFailure(ctx, StateCheckCache, KindIngestion, err)
	}
	run.Rag.Validity = v

	if v.Valid {
		run.step("✓ Found valid cached index")
	} else {
		run.step("✗ No valid cache found (%s)", v.Reason)
	}
	return nil
}

func (e *Engine) ingest(ctx context.Context, run *Run) *StageError {
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	units, err := e.loader.Load(stageCtx, run.Request.DocPath)
	if err != nil {
		return stageFailure(ctx, StateIngest, KindIngestion, err)
	}
	if len(units) == 0 {
		return &StageError{Stage: StateIngest, Kind: KindIngestion, Err: fmt.Errorf("no text could be extracted from %s", filepath.Base(run.Request.DocPath))}
	}
	run.Rag.Units = units

	noun := "sections"
	if _, ok := units[0].Metadata[ingest.MetaPage]; ok {
		noun = "pages"
	}
	run.step("✓ Loaded %s (%d %s)", filepath.Base(run.Request.DocPath), len(units), noun)
	return nil
}

func (e *Engine) split(_ context.Context, run *Run) *StageError {
	p := run.Request.Params
	chunks, err := e.splitter.Split(run.Rag.Units, p.ChunkSize, p.ChunkOverlap)
	if err != nil {
		return &StageError{Stage: StateSplit, Kind: KindIngestion, Err: err}
	}
	if len(chunks) == 0 {
		return &StageError{Stage: StateSplit, Kind: KindIngestion, Err: index.ErrNoChunks}
	}

	stats := ingest.ComputeStats(chunks)
	run.Rag.Chunks = chunks
	run.Rag.ChunkStats = &stats
	run.Rag.Units = nil
	run.step("✓ Split into %d chunks", len(chunks))
	return nil
}

func (e *Engine) buildIndex(ctx context.Context, run *Run) *StageError {
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	v := run.Rag.Validity
	p := run.Request.Params
	res, err := e.indexer.Build(stageCtx, index.BuildRequest{
		Location:     v.PersistLocation,
		CollectionID: v.CollectionID,
		Model:        p.EmbeddingModel,
		Chunks:       run.Rag.Chunks,
		Variant:      fmt.Sprintf("%d/%d/%s", p.ChunkSize, p.ChunkOverlap, p.EmbeddingModel),
		OnStart: func(ctx context.Context) error {
			return e.gate.Invalidate(ctx, v.CollectionID)
		},
		OnBuilt: func(ctx context.Context, stats index.Stats) error {
			return e.gate.Record(ctx, v, p, indexcache.BuildStats{ChunkCount: stats.ChunkCount, VectorSize: stats.VectorSize})
		},
		OnRollback: func(ctx context.Context) error {
			return e.gate.Invalidate(ctx, v.CollectionID)
		},
	})
	if err != nil {
		return stageFailure(ctx, StateBuildIndex, KindBuild, err)
	}

	run.Rag.Handle = res.Handle
	run.Rag.BuildShared = res.Shared
	if res.Shared {
		run.step("✓ Built and saved new index (shared with a concurrent request)")
	} else {
		run.step("✓ Built and saved new index")
	}
	return nil
}

func (e *Engine) loadIndex(ctx context.Context, run *Run) *StageError {
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	v := run.Rag.Validity
	h, err := e.indexer.Attach(stageCtx, v.PersistLocation, v.CollectionID, run.Request.Params.EmbeddingModel)
	if err != nil {
		return stageFailure(ctx, StateLoadIndex, KindRetrieval, err)
	}
	run.Rag.Handle = h
	run.step("⚡ Loaded cached index (fast path)")
	return nil
}

func (e *Engine) retrieve(ctx context.Context, run *Run) *StageError {
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	question := run.Request.Question
	chunks, err := run.Rag.Handle.Search(stageCtx, question, run.Request.K)
	if err != nil {
		return stageFailure(ctx, StateRetrieve, KindRetrieval, err)
	}
	chunks = rerank(question, chunks)

	run.Rag.Retrieved = chunks
	run.Rag.Context = formatContext(chunks)
	run.step("✓ Retrieved %d relevant chunks", len(chunks))
	return nil
}

func (e *Engine) generate(ctx context.Context, run *Run) *StageError {
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	answer, err := e.generator.Generate(stageCtx, run.Request.Question, run.Rag.Context)
	if err != nil {
		return stageFailure(ctx, StateGenerate, KindGeneration, err)
	}
	run.Rag.Answer = answer
	run.step("✓ Generated answer")
	return nil
}

func (e *Engine) handleWeather(ctx context.Context, run *Run) {
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	res := e.weather.Handle(stageCtx, run.Request.Question)
	run.Weather = &WeatherState{Result: res}

	switch {
	case res.City == "":
		run.step("❌ No city found in query")
	case !res.Success:
		run.step("❌ Weather API failed for %s", placeName(res.City, res.State))
	default:
		run.step("✓ Fetched weather for %s", placeName(res.City, res.State))
	}
}

func (e *Engine) handleUnknown(run *Run) {
	available := run.Request.DocPath != ""
	run.Unknown = &UnknownState{DocumentAvailable: available, Answer: helpText(available)}
	if run.Intent == router.IntentRAG && !available {
		run.step("❓ Document question without a document")
		return
	}
	run.step("❓ Unknown query type")
}

func placeName(city, state string) string {
	if state == "" {
		return city
	}
	return city + ", " + state
}

func formatContext(chunks []index.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("--- Context from document ---\n\n")
	for _, c := range chunks {
		var origin []string
		if src, ok := c.Metadata[ingest.MetaSource].(string); ok && src != "" {
			origin = append(origin, "File: "+filepath.Base(src))
		}
		if page, ok := intValue(c.Metadata[ingest.MetaPage]); ok {
			origin = append(origin, fmt.Sprintf("Page: %d", page+1))
		}
		if len(origin) > 0 {
			b.WriteString(strings.Join(origin, " "))
			b.WriteString("\n")
		}
		if heading, ok := c.Metadata[ingest.MetaHeadingPath].(string); ok && heading != "" {
			fmt.Fprintf(&b, "Section: %s\n", heading)
		}
		fmt.Fprintf(&b, "Content: %s\n\n", c.Text)
	}
	b.WriteString("--- End Context ---")
	return b.String()
}

func helpText(documentAvailable bool) string {
	status := "✗ No document"
	if documentAvailable {
		status = "✓ Document loaded"
	}
	return fmt.Sprintf(`I can help you with:

1. 📄 **Document Questions** - Ask about your uploaded document
   Status: %s

2. 🌤️ **Weather Information** - Get weather for any city
   Example: "What's the weather in Mumbai?"

Please ask a question in one of these categories!`, status)
}
