package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/render"
	"reelforge/internal/script"
	"reelforge/internal/services"
	"reelforge/internal/timestamps"
	"reelforge/internal/workspace"
)

// ScriptGenerator is the narrative collaborator: a movie title and plot in,
// a validated script out.
type ScriptGenerator interface {
	Generate(ctx context.Context, title, plot string) (*script.Script, error)
}

// MetadataSource looks up movie metadata and, when available, downloads the
// poster into destDir.
type MetadataSource interface {
	FetchMetadata(ctx context.Context, title, destDir string) (assets.MovieDetails, error)
}

// Deps are the collaborators a Pipeline drives. All are required except
// that offline runs never touch Story, Metadata, TTS, or Footage.
type Deps struct {
	Config      *config.Config
	Logger      *slog.Logger
	Story       ScriptGenerator
	Metadata    MetadataSource
	TTS         assets.SpeechSynthesizer
	Footage     assets.FootageSource
	Transcriber timestamps.Transcriber
	Engine      *render.Engine
	Cache       *assets.CacheStore
}

// Pipeline sequences the five stages that turn a movie name into a
// finished vertical video. It holds no per-run state; each Run gets its
// own execution.
type Pipeline struct {
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps) (*Pipeline, error) {
	if deps.Config == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "configuration required", nil)
	}
	if deps.Engine == nil || deps.Cache == nil || deps.Transcriber == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "engine, cache, and transcriber required", nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{deps: deps, logger: logging.NewComponentLogger(logger, "pipeline")}, nil
}

// Execution is one in-flight run. Events delivers progress one event at a
// time (the channel is unbuffered; the run advances as the caller pulls);
// Result blocks until the stream has closed.
type Execution struct {
	events chan Status
	done   chan struct{}
	result Result
}

// Events returns the ordered progress stream. It closes when the run ends.
func (e *Execution) Events() <-chan Status {
	return e.events
}

// Result returns the terminal value. It blocks until the run completes, so
// drain Events first (or concurrently).
func (e *Execution) Result() Result {
	<-e.done
	return e.result
}

// Run starts a pipeline execution for one movie name. Offline mode
// substitutes every external call with a cache lookup and fails the run if
// the cache is missing or stale.
func (p *Pipeline) Run(ctx context.Context, movieName string, offline bool) *Execution {
	execution := &Execution{
		events: make(chan Status),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(execution.done)
		defer close(execution.events)
		r := &run{
			pipeline:  p,
			execution: execution,
			movieName: movieName,
			offline:   offline,
			doc:       assets.NewDocument(),
		}
		execution.result = r.execute(services.WithJob(ctx, movieName))
	}()
	return execution
}

// run carries the mutable state of one execution through the stages.
type run struct {
	pipeline  *Pipeline
	execution *Execution
	movieName string
	offline   bool

	job     *workspace.Job
	doc     *assets.Document
	details assets.MovieDetails
	script  *script.Script
	scenes  []assets.SceneAsset

	globalWords  []timestamps.Word
	subtitlePath string
}

func (r *run) emit(ctx context.Context, stage int, message string, data map[string]any) {
	select {
	case r.execution.events <- Status{Stage: stage, Message: message, Data: data}:
	case <-ctx.Done():
	}
}

func (r *run) emitError(ctx context.Context, stage int, message string) {
	select {
	case r.execution.events <- Status{Stage: stage, Message: message, IsError: true}:
	case <-ctx.Done():
	}
}

func (r *run) execute(ctx context.Context) Result {
	cfg := r.pipeline.deps.Config
	// Carries the job name and, when the CLI recorded one, the ledger run
	// ID on every line of this execution.
	log := logging.WithContext(ctx, r.pipeline.logger)

	job, err := workspace.Open(cfg.Paths.WorkspaceDir, r.movieName)
	if err != nil {
		r.emitError(ctx, StageScript, "could not open job workspace: "+services.Details(err))
		return Result{}
	}
	r.job = job
	defer func() {
		if err := job.Close(); err != nil {
			log.Warn("job workspace close failed", logging.Error(err))
		}
	}()

	stages := []struct {
		number int
		fn     func(context.Context) error
	}{
		{StageScript, r.stageScript},
		{StageScenes, r.stageScenes},
		{StageTranscribe, r.stageTranscribe},
		{StageSubtitles, r.stageSubtitles},
		{StageRender, r.stageRender},
	}

	for _, stage := range stages {
		stageCtx := services.WithStage(ctx, stage.number)
		if err := ctx.Err(); err != nil {
			r.emitError(ctx, stage.number, "run interrupted")
			return Result{SceneAssets: r.scenes, Script: r.script}
		}
		if err := stage.fn(stageCtx); err != nil {
			r.emitError(ctx, stage.number, services.Details(err))
			log.Error("stage failed",
				logging.Int("stage", stage.number),
				logging.Error(err),
			)
			return Result{SceneAssets: r.scenes, Script: r.script}
		}
	}
	finalPath := workspace.FinalPath(cfg.Paths.OutputDir, r.movieName)

	if !r.offline {
		if err := r.pipeline.deps.Cache.Save(r.movieName, r.doc); err != nil {
			// The artifact exists; a failed cache write only costs the
			// next offline replay.
			log.Warn("cache save failed", logging.Error(err))
			r.emit(ctx, StageRender, "warning: cache save failed: "+services.Details(err), nil)
		}
	}

	r.emit(ctx, StageRender, fmt.Sprintf("Video complete: %s", finalPath), map[string]any{"path": finalPath})
	return Result{SceneAssets: r.scenes, Script: r.script, FinalVideoPath: finalPath}
}
