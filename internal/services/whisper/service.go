// Package whisper produces word-level timestamps by shelling out to a
// whisper CLI and parsing its JSON output.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelforge/internal/config"
	"reelforge/internal/services"
	"reelforge/internal/timestamps"
)

// Service drives the whisper command for one audio file at a time.
type Service struct {
	cfg           config.Whisper
	commandRunner func(ctx context.Context, name string, args ...string) error
}

func NewService(cfg config.Whisper) *Service {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = "whisper"
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// transcriptDocument mirrors whisper's JSON output file.
type transcriptDocument struct {
	Segments []struct {
		Text  string `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Words []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"words"`
	} `json:"segments"`
}

// Transcribe runs whisper over one narration file and returns scene-local
// word timings.
func (s *Service) Transcribe(ctx context.Context, audioPath string) ([]timestamps.Word, error) {
	if audioPath == "" {
		return nil, services.Wrap(services.ErrValidation, "whisper", "transcribe", "audio path required", nil)
	}

	outputDir := filepath.Dir(audioPath)
	args := []string{
		audioPath,
		"--model", s.cfg.Model,
		"--word_timestamps", "True",
		"--output_format", "json",
		"--output_dir", outputDir,
		"--fp16", "False",
	}
	if err := s.run(ctx, s.cfg.Command, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "whisper command failed", err)
	}

	// whisper writes <basename>.json next to the requested output dir.
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	transcriptPath := filepath.Join(outputDir, base+".json")
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "read transcript output", err)
	}

	var doc transcriptDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "whisper", "transcribe", "parse transcript output", err)
	}
	return collectWords(doc), nil
}

// collectWords flattens segments into one word list, falling back to the
// whole segment when a segment carries no per-word timings.
func collectWords(doc transcriptDocument) []timestamps.Word {
	var words []timestamps.Word
	for _, segment := range doc.Segments {
		if len(segment.Words) == 0 {
			text := strings.TrimSpace(segment.Text)
			if text != "" {
				words = append(words, timestamps.Word{Word: text, Start: segment.Start, End: segment.End})
			}
			continue
		}
		for _, word := range segment.Words {
			text := strings.TrimSpace(word.Word)
			if text == "" {
				continue
			}
			words = append(words, timestamps.Word{Word: text, Start: word.Start, End: word.End})
		}
	}
	return words
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
