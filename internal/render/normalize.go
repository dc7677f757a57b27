package render

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/services"
)

// NormalizeRequest describes one scene's conversion to the canonical format.
type NormalizeRequest struct {
	// SourcePath is a motion clip, or a still image when Still is set.
	SourcePath string
	Still      bool
	// Zoom enables the slow Ken-Burns push-in. Always disabled for the
	// ending poster scene and its silent tail.
	Zoom bool
	// TargetSeconds is the scene's narration duration, the authoritative
	// length for the normalized segment.
	TargetSeconds float64
	// TailSeconds extends the segment past the narration with static
	// footage; only the ending scene uses it.
	TailSeconds float64
	OutputPath  string
}

func (r NormalizeRequest) totalSeconds() float64 {
	return r.TargetSeconds + r.TailSeconds
}

// NormalizeScene converts a scene source into a canonical-format segment
// whose duration equals the narration duration (plus any tail) exactly.
// Sources shorter than the target are looped; longer ones are trimmed. The
// output carries no audio stream: narration is concatenated separately.
func (e *Engine) NormalizeScene(ctx context.Context, req NormalizeRequest) error {
	if req.SourcePath == "" {
		return services.Wrap(services.ErrValidation, "render", "normalize", "no source path", nil)
	}
	if req.TargetSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "render", "normalize", fmt.Sprintf("non-positive target duration %v", req.TargetSeconds), nil)
	}

	args := e.buildNormalizeArgs(req)
	if err := e.run(ctx, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "normalize", "ffmpeg failed", err)
	}

	e.logger.Info("scene normalized",
		logging.String("output", req.OutputPath),
		logging.Float64("duration_sec", req.totalSeconds()),
		logging.Bool("still", req.Still),
		logging.Bool("zoom", req.Zoom),
	)
	return nil
}

func (e *Engine) buildNormalizeArgs(req NormalizeRequest) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}

	// Loop the source indefinitely so it always covers the target length;
	// the -t below performs the hard trim.
	if req.Still {
		args = append(args, "-loop", "1")
	} else {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args, "-i", req.SourcePath)
	args = append(args, "-t", formatSeconds(req.totalSeconds()))

	args = append(args, "-vf", e.normalizeFilter(req.Zoom))

	args = append(args,
		"-an",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "20",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(e.fps),
		req.OutputPath,
	)
	return args
}

// normalizeFilter produces the shared scale/crop chain. The crop fills the
// canonical frame without letterboxing, biased to the source center.
func (e *Engine) normalizeFilter(zoom bool) string {
	w := strconv.Itoa(e.width)
	h := strconv.Itoa(e.height)
	parts := []string{
		"scale=" + w + ":" + h + ":force_original_aspect_ratio=increase",
		"crop=" + w + ":" + h,
	}
	if zoom {
		// Per-frame zoom step keeps the push-in monotonic without
		// restarting when the looped source wraps.
		parts = append(parts, "zoompan=z='min(zoom+0.0005,1.25)':d=1"+
			":x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)'"+
			":s="+w+"x"+h+":fps="+strconv.Itoa(e.fps))
	} else {
		parts = append(parts, "fps="+strconv.Itoa(e.fps))
	}
	parts = append(parts, "setsar=1")
	return strings.Join(parts, ",")
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
