package render

import (
	"context"
	"fmt"
	"math"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/services"
)

// Duration reconciliation tolerance between the video and narration tracks
// when no poster tail exists.
const durationToleranceSeconds = 1.0

// Sidechain compressor tuning: narration above the threshold triggers a
// fast-attack, slower-release gain reduction on the music bed.
const (
	duckThreshold = "0.05"
	duckRatio     = "8"
	duckAttackMS  = "20"
	duckReleaseMS = "400"
)

// CompositeJob is the immutable parameter set for the final render.
type CompositeJob struct {
	VideoPath     string
	NarrationPath string
	// MusicPath optionally names a background-music file, looped for the
	// whole program and ducked under narration.
	MusicPath string
	// SubtitlePath optionally names an ASS document to burn in.
	SubtitlePath string
	OutputPath   string
	// NarrationSeconds is the total narration-track duration.
	NarrationSeconds float64
	// HasTail marks a silent poster tail: the video track is then longer
	// than the narration and authoritative for the final duration.
	HasTail     bool
	MusicVolume float64
}

// Composite mixes narration with looped, ducked background music, burns in
// captions when supported, and encodes the final deliverable.
func (e *Engine) Composite(ctx context.Context, job CompositeJob) error {
	if job.VideoPath == "" || job.NarrationPath == "" {
		return services.Wrap(services.ErrValidation, "render", "composite", "video and narration tracks required", nil)
	}

	total, err := e.reconcileDuration(ctx, job)
	if err != nil {
		return err
	}

	subtitlePath := job.SubtitlePath
	if subtitlePath != "" && !e.SupportsSubtitleBurnIn(ctx) {
		e.logger.Warn("ffmpeg build lacks the subtitles filter; rendering without captions",
			logging.String("subtitle_path", subtitlePath))
		subtitlePath = ""
	}

	args := e.buildCompositeArgs(job, subtitlePath, total)
	if err := e.run(ctx, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "composite", "ffmpeg failed", err)
	}

	e.logger.Info("final video rendered",
		logging.String("output", job.OutputPath),
		logging.Float64("duration_sec", total),
		logging.Bool("music", job.MusicPath != ""),
		logging.Bool("captions", subtitlePath != ""),
	)
	return nil
}

// reconcileDuration applies the total-duration policy: with a poster tail
// the video track is authoritative; otherwise narration rules and a large
// video-track mismatch is only worth a warning.
func (e *Engine) reconcileDuration(ctx context.Context, job CompositeJob) (float64, error) {
	videoSeconds, err := e.ProbeDuration(ctx, job.VideoPath)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "render", "composite", "probe video track", err)
	}
	if job.HasTail {
		return videoSeconds, nil
	}
	if diff := math.Abs(videoSeconds - job.NarrationSeconds); diff > durationToleranceSeconds {
		e.logger.Warn("video and narration track durations diverge",
			logging.Float64("video_sec", videoSeconds),
			logging.Float64("narration_sec", job.NarrationSeconds),
			logging.Float64("difference_sec", diff),
		)
	}
	return job.NarrationSeconds, nil
}

func (e *Engine) buildCompositeArgs(job CompositeJob, subtitlePath string, totalSeconds float64) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}

	args = append(args, "-i", job.VideoPath)
	args = append(args, "-i", job.NarrationPath)
	hasMusic := job.MusicPath != ""
	if hasMusic {
		args = append(args, "-stream_loop", "-1", "-i", job.MusicPath)
	}

	var filters []string
	videoMap := "0:v"
	if subtitlePath != "" {
		filters = append(filters, "[0:v]subtitles="+EscapeFilterPath(subtitlePath)+"[vout]")
		videoMap = "[vout]"
	}

	audioMap := "1:a"
	switch {
	case hasMusic:
		filters = append(filters,
			"[1:a]asplit=2[nar][duckkey]",
			fmt.Sprintf("[2:a]volume=%s[bed]", formatSeconds(job.MusicVolume)),
			"[bed][duckkey]sidechaincompress=threshold="+duckThreshold+
				":ratio="+duckRatio+":attack="+duckAttackMS+":release="+duckReleaseMS+"[ducked]",
			"[nar][ducked]amix=inputs=2:duration=longest:dropout_transition=2:normalize=0[aout]",
		)
		audioMap = "[aout]"
	case job.HasTail:
		// No music bed, but the silent tail still needs audio samples to
		// keep the streams aligned.
		filters = append(filters, "[1:a]apad[aout]")
		audioMap = "[aout]"
	}

	if len(filters) > 0 {
		args = append(args, "-filter_complex", strings.Join(filters, ";"))
	}

	args = append(args, "-map", videoMap, "-map", audioMap)

	if subtitlePath != "" {
		args = append(args, "-c:v", "libx264", "-preset", "veryfast", "-crf", "20", "-pix_fmt", "yuv420p")
	} else {
		args = append(args, "-c:v", "copy")
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", formatSeconds(totalSeconds),
		"-movflags", "+faststart",
		job.OutputPath,
	)
	return args
}
