package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/internal/pipeline"
	"github.com/sells-group/lease-abstract-cli/internal/render"
	"github.com/sells-group/lease-abstract-cli/internal/review"
	"github.com/sells-group/lease-abstract-cli/internal/store"
	"github.com/sells-group/lease-abstract-cli/internal/synonyms"
	anthropicpkg "github.com/sells-group/lease-abstract-cli/pkg/anthropic"
)

// pipelineEnv holds the initialized store, orchestrator, and review
// sinks shared by the extract, batch, and serve commands.
type pipelineEnv struct {
	Store  store.Store
	Orch   *pipeline.Orchestrator
	Review *review.Notifier
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates config for the given command mode, opens and
// migrates the store, and wires the cache-backed renderer, synonym
// table, model client, and review sinks into an orchestrator. Callers
// should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	renderer, err := render.NewRenderer(cfg.Render)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	cached := render.NewCachedRenderer(renderer, st, time.Duration(cfg.Render.CacheTTLHours)*time.Hour)

	syn, err := synonyms.Load(cfg.Synonyms.Path)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	client := anthropicpkg.NewClient(cfg.Anthropic.Key)

	return &pipelineEnv{
		Store:  st,
		Orch:   pipeline.New(client, cached, syn, cfg),
		Review: review.New(cfg.Review),
	}, nil
}

// processDocument creates a run for the document and executes it
// through the pipeline.
func processDocument(ctx context.Context, env *pipelineEnv, path string, opts pipeline.Options) (*model.Run, error) {
	run, err := env.Store.CreateRun(ctx, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return executeRun(ctx, env, run, path, opts)
}

// executeRun drives an already-created run through the pipeline,
// records the terminal state, and notifies the review sinks on
// completion. The returned run carries the stored payload.
func executeRun(ctx context.Context, env *pipelineEnv, run *model.Run, path string, opts pipeline.Options) (*model.Run, error) {
	if err := env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		return nil, err
	}

	result, skipped, err := env.Orch.RunWithOptions(ctx, path, opts)
	if err != nil {
		if fErr := env.Store.FailRun(ctx, run.ID, err.Error()); fErr != nil {
			zap.L().Warn("record run failure",
				zap.String("run_id", run.ID),
				zap.Error(fErr),
			)
		}
		return nil, err
	}

	if skipped != nil {
		if err := env.Store.SkipRun(ctx, run.ID, skipped); err != nil {
			return nil, err
		}
		return env.Store.GetRun(ctx, run.ID)
	}

	if err := env.Store.CompleteRun(ctx, run.ID, result); err != nil {
		return nil, err
	}

	if env.Review.Enabled() {
		if err := env.Review.Notify(ctx, result); err != nil {
			zap.L().Warn("review notification failed",
				zap.String("document", result.Filename),
				zap.Error(err),
			)
		}
	}

	return env.Store.GetRun(ctx, run.ID)
}
