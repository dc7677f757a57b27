package assets

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"reelforge/internal/logging"
	"reelforge/internal/script"
	"reelforge/internal/services"
)

// SpeechRequest asks the TTS collaborator for one narration file.
type SpeechRequest struct {
	Text       string
	Voice      string
	Speed      float64
	Mood       string
	OutputPath string
}

// SpeechResult is the synthesized narration and its measured duration.
type SpeechResult struct {
	AudioPath       string
	DurationSeconds float64
}

// SpeechSynthesizer is the text-to-speech collaborator. Implementations
// must fail on empty text.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) (SpeechResult, error)
}

// FootageRequest asks the stock-footage collaborator for one scene's clip.
type FootageRequest struct {
	Queries    []string
	OutputPath string
}

// FootageResult is the fetched clip plus provenance.
type FootageResult struct {
	VideoPath string
	Meta      FootageMeta
}

// FootageSource is the stock-footage collaborator. Implementations may
// substitute a local fallback clip and mark it in the metadata.
type FootageSource interface {
	Fetch(ctx context.Context, req FootageRequest) (FootageResult, error)
}

// Coordinator acquires one scene's audio and footage. The two provider
// calls overlap because each provider rate-limits independently; nothing
// else runs concurrently, so provider pressure stays at one call per
// provider at any time.
type Coordinator struct {
	tts     SpeechSynthesizer
	footage FootageSource
	logger  *slog.Logger
}

func NewCoordinator(tts SpeechSynthesizer, footage FootageSource, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		tts:     tts,
		footage: footage,
		logger:  logging.NewComponentLogger(logger, "assets"),
	}
}

// ProcessScene synthesizes narration and fetches footage for one scene in
// parallel and merges the results. All-or-nothing: if either side fails,
// the scene fails and neither partial output is trusted.
func (c *Coordinator) ProcessScene(ctx context.Context, scene script.Scene, voiceID, overallMood, audioOut, videoOut string) (SceneAsset, error) {
	var (
		wg         sync.WaitGroup
		speech     SpeechResult
		speechErr  error
		footage    FootageResult
		footageErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		speech, speechErr = c.tts.Synthesize(ctx, SpeechRequest{
			Text:       scene.Narration,
			Voice:      voiceID,
			Speed:      scene.TTSSpeed,
			Mood:       overallMood,
			OutputPath: audioOut,
		})
	}()
	go func() {
		defer wg.Done()
		footage, footageErr = c.footage.Fetch(ctx, FootageRequest{
			Queries:    scene.VisualQueries,
			OutputPath: videoOut,
		})
	}()
	wg.Wait()

	if err := errors.Join(speechErr, footageErr); err != nil {
		return SceneAsset{}, services.Wrap(services.ErrTransient, "assets", "process scene", "scene acquisition failed", err)
	}

	c.logger.Info("scene assets acquired",
		logging.Int("scene", scene.SceneIndex),
		logging.Float64("audio_sec", speech.DurationSeconds),
		logging.String("footage_source", footage.Meta.Source),
		logging.Bool("fallback", footage.Meta.Fallback),
	)

	return SceneAsset{
		Index:         scene.SceneIndex,
		Narration:     scene.Narration,
		VisualQueries: scene.VisualQueries,
		AudioPath:     speech.AudioPath,
		AudioDuration: speech.DurationSeconds,
		VideoPath:     footage.VideoPath,
		VideoMeta:     footage.Meta,
	}, nil
}
