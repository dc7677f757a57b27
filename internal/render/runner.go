package render

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/media/ffprobe"
)

// CommandRunner executes an external command and returns its combined output.
// Injectable so tests can capture argument lists without a real ffmpeg.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// Engine drives the external ffmpeg process for every normalize, concat,
// and composite operation. Invocations are serialized by the orchestrator;
// the engine itself holds no mutable per-job state beyond the capability
// probe cache.
type Engine struct {
	ffmpeg  string
	ffprobe string
	width   int
	height  int
	fps     int
	timeout int

	logger *slog.Logger
	runner CommandRunner
	probe  func(ctx context.Context, path string) (float64, error)

	subtitleProbe sync.Once
	subtitleOK    bool
}

// NewEngine builds an Engine from the render configuration.
func NewEngine(cfg config.Render, logger *slog.Logger) *Engine {
	ffmpeg := strings.TrimSpace(cfg.FFmpegBinary)
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	ffprobeBin := strings.TrimSpace(cfg.FFprobeBinary)
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	engine := &Engine{
		ffmpeg:  ffmpeg,
		ffprobe: ffprobeBin,
		width:   cfg.Width,
		height:  cfg.Height,
		fps:     cfg.FPS,
		timeout: cfg.TimeoutSec,
		logger:  logging.NewComponentLogger(logger, "render"),
		runner:  defaultRunner,
	}
	engine.probe = func(ctx context.Context, path string) (float64, error) {
		return ffprobe.Duration(ctx, engine.ffprobe, path)
	}
	return engine
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Engine) WithCommandRunner(runner CommandRunner) {
	e.runner = runner
}

// WithDurationProbe sets a custom duration probe (for testing).
func (e *Engine) WithDurationProbe(probe func(ctx context.Context, path string) (float64, error)) {
	e.probe = probe
}

func (e *Engine) run(ctx context.Context, args ...string) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.timeout)*time.Second)
		defer cancel()
	}
	e.logger.Debug("ffmpeg invocation", logging.String("args", strings.Join(args, " ")))
	_, err := e.runner(ctx, e.ffmpeg, args...)
	return err
}

// ProbeDuration returns the container duration of a media file in seconds.
func (e *Engine) ProbeDuration(ctx context.Context, path string) (float64, error) {
	return e.probe(ctx, path)
}

// SupportsSubtitleBurnIn reports whether the ffmpeg build exposes the
// subtitles filter (it requires libass). Probed once per engine.
func (e *Engine) SupportsSubtitleBurnIn(ctx context.Context) bool {
	e.subtitleProbe.Do(func() {
		output, err := e.runner(ctx, e.ffmpeg, "-hide_banner", "-filters")
		if err != nil {
			e.logger.Warn("ffmpeg filter probe failed", logging.Error(err))
			return
		}
		for _, line := range strings.Split(string(output), "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 2 && fields[1] == "subtitles" {
				e.subtitleOK = true
				return
			}
		}
	})
	return e.subtitleOK
}
