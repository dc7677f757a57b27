package render

import (
	"context"
	"os"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/services"
)

// ConcatVideo splices already-normalized segments into one video track with
// a stream copy. Valid only because every input was produced with identical
// normalizer parameters.
func (e *Engine) ConcatVideo(ctx context.Context, segments []string, outputPath string) error {
	if len(segments) == 0 {
		return services.Wrap(services.ErrValidation, "render", "concat video", "no segments", nil)
	}

	listPath := outputPath + ".list"
	if err := writeConcatList(listPath, segments); err != nil {
		return services.Wrap(services.ErrTransient, "render", "concat video", "write list file", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
	if err := e.run(ctx, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "concat video", "ffmpeg failed", err)
	}

	e.logger.Info("video track concatenated",
		logging.Int("segments", len(segments)),
		logging.String("output", outputPath),
	)
	return nil
}

// ConcatAudio splices the narration tracks into one lossless PCM file.
func (e *Engine) ConcatAudio(ctx context.Context, tracks []string, outputPath string) error {
	if len(tracks) == 0 {
		return services.Wrap(services.ErrValidation, "render", "concat audio", "no tracks", nil)
	}

	listPath := outputPath + ".list"
	if err := writeConcatList(listPath, tracks); err != nil {
		return services.Wrap(services.ErrTransient, "render", "concat audio", "write list file", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:a", "pcm_s16le",
		outputPath,
	}
	if err := e.run(ctx, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "concat audio", "ffmpeg failed", err)
	}

	e.logger.Info("audio track concatenated",
		logging.Int("tracks", len(tracks)),
		logging.String("output", outputPath),
	)
	return nil
}

func writeConcatList(path string, entries []string) error {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(ConcatListEntry(entry))
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
