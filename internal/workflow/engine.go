// Package workflow runs a question through routing and the handler for its intent.
package workflow

import (
	"context"
	"fmt"
	"time"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/router"
)

const defaultStageTimeout = 60 * time.Second

// Engine drives requests through the state graph. It is safe for concurrent use;
// each request gets its own Run.
type Engine struct {
	router       Router
	gate         CacheGate
	loader       Loader
	splitter     Splitter
	indexer      Indexer
	generator    AnswerGenerator
	weather      WeatherHandler
	stageTimeout time.Duration
}

// NewEngine creates an Engine. Every collaborator call runs under stageTimeout.
func NewEngine(
	router Router,
	gate CacheGate,
	loader Loader,
	splitter Splitter,
	indexer Indexer,
	generator AnswerGenerator,
	weather WeatherHandler,
	stageTimeout time.Duration,
) *Engine {
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
	}
	return &Engine{
		router:       router,
		gate:         gate,
		loader:       loader,
		splitter:     splitter,
		indexer:      indexer,
		generator:    generator,
		weather:      weather,
		stageTimeout: stageTimeout,
	}
}

// Run answers req. Every outcome, including failures, is a Result; failures
// carry Error and no partial answer.
func (e *Engine) Run(ctx context.Context, req Request) Result {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	run := newRun(req)
	defer run.release()

	state := StateStart
	for state != StateEnd {
		if err := ctx.Err(); err != nil {
			return e.fail(ctx, run, stageFailure(ctx, state, KindCanceled, err))
		}
		if run.visited[state] {
			return e.fail(ctx, run, &StageError{Stage: state, Kind: KindInternal, Err: fmt.Errorf("state %s entered twice", state)})
		}
		run.visited[state] = true

		stageStart := time.Now()
		if serr := e.execute(ctx, state, run); serr != nil {
			return e.fail(ctx, run, serr)
		}
		logger.DebugContext(ctx, "stage completed", "stage", state.String(), "duration", time.Since(stageStart))

		next, err := Transition(state, run)
		if err != nil {
			return e.fail(ctx, run, &StageError{Stage: state, Kind: KindInternal, Err: err})
		}
		state = next
	}

	res := run.result()
	logger.InfoContext(ctx, "request completed",
		"intent", res.Intent,
		"steps", len(res.Trace),
		"duration", time.Since(start),
	)
	return res
}

func (e *Engine) execute(ctx context.Context, s State, run *Run) *StageError {
	switch s {
	case StateStart:
		return nil
	case StateRoute:
		e.route(ctx, run)
		return nil
	case StateCheckCache:
		return e.checkCache(ctx, run)
	case StateIngest:
		return e.ingest(ctx, run)
	case StateSplit:
		return e.split(ctx, run)
	case StateBuildIndex:
		return e.buildIndex(ctx, run)
	case StateLoadIndex:
		return e.loadIndex(ctx, run)
	case StateRetrieve:
		return e.retrieve(ctx, run)
	case StateGenerate:
		return e.generate(ctx, run)
	case StateWeather:
		e.handleWeather(ctx, run)
		return nil
	case StateUnknown:
		e.handleUnknown(run)
		return nil
	}
	return &StageError{Stage: s, Kind: KindInternal, Err: fmt.Errorf("no stage for %s", s)}
}

func (e *Engine) fail(ctx context.Context, run *Run, serr *StageError) Result {
	contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "request failed",
		"stage", serr.Stage.String(),
		"kind", serr.Kind,
		"error", serr.Err,
	)
	run.step("❌ %s failed: %v", serr.Stage, serr.Err)

	res := run.result()
	if res.Intent == "" {
		res.Intent = router.IntentUnknown
	}
	res.Answer = userMessage(serr)
	res.Error = &ErrorInfo{Stage: serr.Stage.String(), Kind: serr.Kind, Message: serr.Err.Error()}
	return res
}

func (e *Engine) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.stageTimeout)
}
