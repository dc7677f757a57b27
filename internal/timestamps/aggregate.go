// Package timestamps re-bases per-scene speech-to-text word timings onto
// the single global timeline of the concatenated narration track.
package timestamps

import (
	"context"
	"log/slog"

	"reelforge/internal/logging"
)

// Word is one recognized word with its timing in seconds. Scene-local on
// input from the transcriber, pipeline-global after aggregation.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcriber produces word-level timings for one narration audio file,
// in scene-local seconds.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]Word, error)
}

// SceneAudio is the aggregator's view of one completed scene: its narration
// file and the authoritative narration duration.
type SceneAudio struct {
	Index           int
	AudioPath       string
	DurationSeconds float64
}

// Result carries both views of the transcription: per-scene local words for
// attachment back to the scene record, and the merged global timeline.
type Result struct {
	SceneWords map[int][]Word
	Global     []Word
}

// Aggregate transcribes each scene independently and shifts its words by
// the summed duration of all prior scenes. A scene whose transcription
// fails contributes no words but its duration still advances the offset,
// so later scenes stay in sync. Scenes must arrive in script order.
func Aggregate(ctx context.Context, transcriber Transcriber, scenes []SceneAudio, logger *slog.Logger) Result {
	log := logging.NewComponentLogger(logger, "timestamps")
	result := Result{SceneWords: make(map[int][]Word, len(scenes))}

	offset := 0.0
	for _, scene := range scenes {
		words, err := transcriber.Transcribe(ctx, scene.AudioPath)
		if err != nil {
			log.Warn("scene transcription failed, continuing without captions for it",
				logging.Int("scene", scene.Index),
				logging.Error(err),
			)
			words = nil
		}

		result.SceneWords[scene.Index] = words
		for _, word := range words {
			result.Global = append(result.Global, Word{
				Word:  word.Word,
				Start: word.Start + offset,
				End:   word.End + offset,
			})
		}

		offset += scene.DurationSeconds
	}

	log.Info("global timeline assembled",
		logging.Int("scenes", len(scenes)),
		logging.Int("words", len(result.Global)),
		logging.Float64("total_sec", offset),
	)
	return result
}
