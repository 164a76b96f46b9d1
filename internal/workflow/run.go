package workflow

import (
	"fmt"

	"assistant-ai/internal/index"
	"assistant-ai/internal/indexcache"
	"assistant-ai/internal/ingest"
	"assistant-ai/internal/router"
	"assistant-ai/internal/weather"
)

// Request is one question to answer. It is never modified once a run starts.
type Request struct {
	Question string
	// DocPath is the resolved document path, empty when no document is attached.
	DocPath      string
	Params       indexcache.Params
	K            int
	ForceRebuild bool
}

// Run is the state threaded through one request. Exactly one of Rag,
// Weather and Unknown is set once ROUTE has run.
type Run struct {
	Request  Request
	Intent   router.Intent
	Decision router.Decision
	Trace    []string

	Rag     *RagState
	Weather *WeatherState
	Unknown *UnknownState

	visited map[State]bool
}

func newRun(req Request) *Run {
	return &Run{Request: req, visited: make(map[State]bool)}
}

func (r *Run) step(format string, args ...any) {
	r.Trace = append(r.Trace, fmt.Sprintf(format, args...))
}

// RagState accumulates the document branch.
type RagState struct {
	Validity    indexcache.Validity
	Units       []ingest.Unit
	Chunks      []ingest.Chunk
	ChunkStats  *ingest.ChunkStats
	BuildShared bool
	Handle      *index.Handle
	Retrieved   []index.RetrievedChunk
	Context     string
	Answer      string
}

// WeatherState holds the weather branch outcome.
type WeatherState struct {
	Result weather.Result
}

// UnknownState holds the fallback branch outcome.
type UnknownState struct {
	DocumentAvailable bool
	Answer            string
}

// Result is the outcome of a request.
type Result struct {
	Answer   string         `json:"answer"`
	Intent   router.Intent  `json:"intent"`
	Trace    []string       `json:"trace"`
	Metadata map[string]any `json:"metadata"`
	Error    *ErrorInfo     `json:"error,omitempty"`
}

// Source identifies where a retrieved chunk came from.
type Source struct {
	Source      string  `json:"source,omitempty"`
	Page        *int    `json:"page,omitempty"`
	HeadingPath string  `json:"heading_path,omitempty"`
	ChunkIndex  int     `json:"chunk_index"`
	Score       float32 `json:"score"`
}

func (r *Run) result() Result {
	res := Result{
		Trace:    r.Trace,
		Metadata: map[string]any{"route_reason": r.Decision.Reason},
	}
	if res.Trace == nil {
		res.Trace = []string{}
	}

	switch {
	case r.Rag != nil:
		res.Intent = router.IntentRAG
		res.Answer = r.Rag.Answer
		res.Metadata["agent"] = string(router.IntentRAG)
		res.Metadata["cache_hit"] = r.Rag.Validity.Valid
		res.Metadata["cache_reason"] = r.Rag.Validity.Reason
		res.Metadata["collection_id"] = r.Rag.Validity.CollectionID
		res.Metadata["chunks_retrieved"] = len(r.Rag.Retrieved)
		res.Metadata["sources"] = sources(r.Rag.Retrieved)
		if r.Rag.ChunkStats != nil {
			res.Metadata["chunk_stats"] = *r.Rag.ChunkStats
		}
	case r.Weather != nil:
		w := r.Weather.Result
		res.Intent = router.IntentWeather
		res.Answer = w.Answer
		res.Metadata["agent"] = string(router.IntentWeather)
		res.Metadata["success"] = w.Success
		res.Metadata["city"] = w.City
		res.Metadata["state"] = w.State
		if w.Report != nil {
			res.Metadata["temperature"] = w.Report.Temp
			res.Metadata["raw"] = w.Report.Raw
		}
	case r.Unknown != nil:
		res.Intent = router.IntentUnknown
		res.Answer = r.Unknown.Answer
		res.Metadata["agent"] = string(router.IntentUnknown)
		res.Metadata["document_available"] = r.Unknown.DocumentAvailable
		if r.Intent != router.IntentUnknown {
			res.Metadata["classified_intent"] = string(r.Intent)
		}
	default:
		res.Intent = r.Intent
	}
	return res
}

func sources(chunks []index.RetrievedChunk) []Source {
	out := make([]Source, 0, len(chunks))
	for _, c := range chunks {
		s := Source{Score: c.Score}
		s.Source, _ = c.Metadata[ingest.MetaSource].(string)
		s.HeadingPath, _ = c.Metadata[ingest.MetaHeadingPath].(string)
		if idx, ok := intValue(c.Metadata[ingest.MetaChunkIndex]); ok {
			s.ChunkIndex = idx
		}
		if page, ok := intValue(c.Metadata[ingest.MetaPage]); ok {
			s.Page = &page
		}
		out = append(out, s)
	}
	return out
}

// intValue accepts the integer encodings payloads come back with.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// release gives back the index handle held by the run.
func (r *Run) release() {
	if r.Rag != nil && r.Rag.Handle != nil {
		r.Rag.Handle.Release()
		r.Rag.Handle = nil
	}
}
