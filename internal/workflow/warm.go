package workflow

import (
	"context"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/indexcache"
	"assistant-ai/internal/ingest"
	"assistant-ai/internal/router"
)

// WarmResult reports an index warm-up.
type WarmResult struct {
	CollectionID string             `json:"collection_id"`
	CacheHit     bool               `json:"cache_hit"`
	CacheReason  string             `json:"cache_reason"`
	ChunkStats   *ingest.ChunkStats `json:"chunk_stats,omitempty"`
	Trace        []string           `json:"trace"`
}

// Warm makes sure a valid index exists for docPath built with params,
// running the cache check and, on a miss, ingestion and build. Failures
// are returned as *StageError.
func (e *Engine) Warm(ctx context.Context, docPath string, params indexcache.Params, force bool) (WarmResult, error) {
	run := newRun(Request{DocPath: docPath, Params: params, ForceRebuild: force})
	run.Intent = router.IntentRAG
	defer run.release()

	stages := []State{StateCheckCache, StateIngest, StateSplit, StateBuildIndex}
	for i, s := range stages {
		if err := ctx.Err(); err != nil {
			return WarmResult{Trace: run.Trace}, stageFailure(ctx, s, KindCanceled, err)
		}
		if serr := e.execute(ctx, s, run); serr != nil {
			return WarmResult{Trace: run.Trace}, serr
		}
		if i == 0 && run.Rag.Validity.Valid {
			break
		}
	}

	v := run.Rag.Validity
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "index warmed",
		"collection", v.CollectionID,
		"cache_hit", v.Valid,
		"reason", v.Reason,
	)
	return WarmResult{
		CollectionID: v.CollectionID,
		CacheHit:     v.Valid,
		CacheReason:  v.Reason,
		ChunkStats:   run.Rag.ChunkStats,
		Trace:        run.Trace,
	}, nil
}
