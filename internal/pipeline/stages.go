package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelforge/internal/assets"
	"reelforge/internal/fileutil"
	"reelforge/internal/logging"
	"reelforge/internal/render"
	"reelforge/internal/services"
	"reelforge/internal/subtitles"
	"reelforge/internal/timestamps"
	"reelforge/internal/workspace"
)

// TTS speed for the ending reveal line, slightly slower than body scenes.
const endingRevealSpeed = 1.2

// Stage 1: movie metadata and the script.
func (r *run) stageScript(ctx context.Context) error {
	deps := r.pipeline.deps

	if r.offline {
		doc, err := deps.Cache.Load(r.movieName)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return services.Wrap(services.ErrNotFound, "pipeline", "script stage",
					fmt.Sprintf("no cached data for %q, run without --offline first", r.movieName), err)
			}
			return err
		}
		if doc.MovieDetails == nil {
			return services.Wrap(services.ErrValidation, "pipeline", "script stage", "no movie details in cache", nil)
		}
		if doc.VideoScript == nil {
			return services.Wrap(services.ErrValidation, "pipeline", "script stage", "no script in cache", nil)
		}
		r.doc = doc
		r.details = *doc.MovieDetails
		r.script = doc.VideoScript
		r.emit(ctx, StageScript, "Using cached movie details and script", nil)
		return nil
	}

	if deps.Metadata == nil || deps.Story == nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "script stage", "metadata and story collaborators required online", nil)
	}

	r.emit(ctx, StageScript, fmt.Sprintf("Searching for movie: %q...", r.movieName), nil)
	details, err := deps.Metadata.FetchMetadata(ctx, r.movieName, r.job.Dir)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "pipeline", "script stage",
			fmt.Sprintf("could not find any movie matching %q", r.movieName), err)
	}
	r.details = details
	r.doc.MovieDetails = &details
	if details.PosterPath == "" {
		r.emit(ctx, StageScript, "Could not download poster (will skip ending poster scene)", nil)
	}

	r.emit(ctx, StageScript, fmt.Sprintf("Generating script for %q (%s)...", details.Title, details.Year), nil)
	generated, err := deps.Story.Generate(ctx, details.Title, details.Overview)
	if err != nil {
		return services.Wrap(services.ErrTransient, "pipeline", "script stage", "script generation failed", err)
	}
	generated.Normalize()
	if err := generated.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "pipeline", "script stage", "generated script invalid", err)
	}
	r.script = generated
	r.doc.VideoScript = generated

	r.emit(ctx, StageScript, fmt.Sprintf("Script ready: %d scenes, voice %s", len(generated.Scenes), generated.SelectedVoiceID),
		map[string]any{"scenes": len(generated.Scenes)})
	return nil
}

// Stage 2: per-scene asset acquisition plus the ending poster scene.
func (r *run) stageScenes(ctx context.Context) error {
	deps := r.pipeline.deps
	coordinator := assets.NewCoordinator(deps.TTS, deps.Footage, deps.Logger)

	total := len(r.script.Scenes)
	for _, scene := range r.script.Scenes {
		r.emit(ctx, StageScenes, fmt.Sprintf("Processing scene %d/%d...", scene.SceneIndex+1, total), nil)

		if r.offline {
			record, ok := r.doc.Scene(assets.SceneKey(scene.SceneIndex))
			if !ok {
				r.emitError(ctx, StageScenes, fmt.Sprintf("no cached data for scene %d", scene.SceneIndex))
				continue
			}
			if !record.FilesPresent() {
				r.emitError(ctx, StageScenes, fmt.Sprintf("cached files not found for scene %d", scene.SceneIndex))
				continue
			}
			r.scenes = append(r.scenes, record.Asset(scene.SceneIndex, scene.Narration, scene.VisualQueries, false))
			r.emit(ctx, StageScenes, fmt.Sprintf("Scene %d: using cached assets", scene.SceneIndex), nil)
			continue
		}

		asset, err := coordinator.ProcessScene(ctx, scene,
			r.script.SelectedVoiceID, r.script.OverallMood,
			r.job.SceneAudioPath(scene.SceneIndex), r.job.SceneVideoPath(scene.SceneIndex))
		if err != nil {
			// Dropping a scene only helps when retrying the next one can
			// succeed; misconfiguration fails them all identically.
			if services.Fatal(err) {
				return err
			}
			r.emitError(ctx, StageScenes, fmt.Sprintf("failed to process scene %d: %s", scene.SceneIndex, services.Details(err)))
			continue
		}
		r.scenes = append(r.scenes, asset)
		r.doc.PutScene(assets.SceneKey(scene.SceneIndex), assets.SceneRecord{
			AudioPath:     asset.AudioPath,
			AudioDuration: asset.AudioDuration,
			VideoPath:     asset.VideoPath,
			VideoMeta:     &asset.VideoMeta,
		})
	}

	if len(r.scenes) == 0 {
		return services.Wrap(services.ErrValidation, "pipeline", "scene stage", "no scenes were processed successfully", nil)
	}
	r.emit(ctx, StageScenes, fmt.Sprintf("Scene processing complete: %d scenes", len(r.scenes)), nil)

	r.appendEndingScene(ctx)
	return nil
}

// appendEndingScene adds the synthetic poster-reveal scene when a poster
// exists. Every failure here is degraded-not-fatal: the video simply ships
// without the reveal.
//
// The ending scene is indexed past the script's scene range, never relative
// to the survivor count: after a dropped scene the two would collide, and
// scene indexes key both the normalized segment paths and the word-timestamp
// rebinding.
func (r *run) appendEndingScene(ctx context.Context) {
	deps := r.pipeline.deps
	endingIndex := len(r.script.Scenes)

	if r.offline {
		record, ok := r.doc.Scene(assets.EndingKey)
		if !ok {
			r.emit(ctx, StageScenes, "No ending scene in cache", nil)
			return
		}
		if !record.FilesPresent() {
			r.emit(ctx, StageScenes, "Cached ending scene files not found", nil)
			return
		}
		asset := record.Asset(endingIndex, record.Narration, []string{"movie poster"}, true)
		r.scenes = append(r.scenes, asset)
		r.emit(ctx, StageScenes, fmt.Sprintf("Ending scene loaded: %q", record.Narration), nil)
		return
	}

	if r.details.PosterPath == "" || !fileutil.FileExists(r.details.PosterPath) {
		r.emit(ctx, StageScenes, "Skipping ending scene (no poster available)", nil)
		return
	}

	narration := assets.EndingNarration(r.details.Title, r.details.Year)
	r.emit(ctx, StageScenes, fmt.Sprintf("Ending narration: %q", narration), nil)

	speech, err := deps.TTS.Synthesize(ctx, assets.SpeechRequest{
		Text:       narration,
		Voice:      r.script.SelectedVoiceID,
		Speed:      endingRevealSpeed,
		Mood:       r.script.OverallMood,
		OutputPath: r.job.Path("ending_audio.wav"),
	})
	if err != nil {
		r.emitError(ctx, StageScenes, "failed to create ending scene: "+services.Details(err))
		return
	}

	asset := assets.SceneAsset{
		Index:         endingIndex,
		Narration:     narration,
		VisualQueries: []string{"movie poster"},
		AudioPath:     speech.AudioPath,
		AudioDuration: speech.DurationSeconds,
		PosterPath:    r.details.PosterPath,
		VideoMeta:     assets.FootageMeta{Source: "poster"},
		IsEndingScene: true,
	}
	r.scenes = append(r.scenes, asset)
	r.doc.PutScene(assets.EndingKey, assets.SceneRecord{
		AudioPath:     speech.AudioPath,
		AudioDuration: speech.DurationSeconds,
		PosterPath:    r.details.PosterPath,
		Narration:     narration,
	})
	r.emit(ctx, StageScenes, "Ending scene created with movie poster", nil)
}

// Stage 3: word-level transcription re-based onto the global timeline.
func (r *run) stageTranscribe(ctx context.Context) error {
	r.emit(ctx, StageTranscribe, "Transcribing narration for word timestamps...", nil)

	sceneAudio := make([]timestamps.SceneAudio, 0, len(r.scenes))
	for _, asset := range r.scenes {
		sceneAudio = append(sceneAudio, timestamps.SceneAudio{
			Index:           asset.Index,
			AudioPath:       asset.AudioPath,
			DurationSeconds: asset.AudioDuration,
		})
	}

	result := timestamps.Aggregate(ctx, r.pipeline.deps.Transcriber, sceneAudio, r.pipeline.deps.Logger)
	for i := range r.scenes {
		words := result.SceneWords[r.scenes[i].Index]
		if len(words) == 0 && r.scenes[i].Narration != "" {
			r.emitError(ctx, StageTranscribe, fmt.Sprintf("no word timestamps for scene %d", r.scenes[i].Index))
		}
		r.scenes[i].WordTimestamps = words
	}
	r.globalWords = result.Global

	r.emit(ctx, StageTranscribe, fmt.Sprintf("Timeline assembled: %d words across %d scenes", len(result.Global), len(r.scenes)), nil)
	return nil
}

// Stage 4: caption synthesis. No words means no captions, not a dead run.
func (r *run) stageSubtitles(ctx context.Context) error {
	if len(r.globalWords) == 0 {
		r.emit(ctx, StageSubtitles, "No word timestamps available, skipping captions", nil)
		return nil
	}

	cfg := r.pipeline.deps.Config
	events, err := subtitles.BuildEvents(r.globalWords, cfg.Render.WordsPerEvent)
	if err != nil {
		r.emitError(ctx, StageSubtitles, "caption synthesis failed: "+services.Details(err))
		return nil
	}

	path := r.job.Path("captions.ass")
	if err := subtitles.WriteDocument(path, events, cfg.Render.Width, cfg.Render.Height); err != nil {
		r.emitError(ctx, StageSubtitles, "caption file write failed: "+services.Details(err))
		return nil
	}
	r.subtitlePath = path
	r.emit(ctx, StageSubtitles, fmt.Sprintf("Captions ready: %d events", len(events)), nil)
	return nil
}

// Stage 5: normalize, concatenate, and composite the final video.
func (r *run) stageRender(ctx context.Context) error {
	cfg := r.pipeline.deps.Config
	engine := r.pipeline.deps.Engine

	narrationSeconds := 0.0
	hasTail := false
	normalized := make([]string, 0, len(r.scenes))
	audioTracks := make([]string, 0, len(r.scenes))

	for _, asset := range r.scenes {
		source, still := asset.SourcePath()
		tail := 0.0
		if asset.IsEndingScene {
			tail = cfg.Render.TailSeconds
			hasTail = true
		}

		r.emit(ctx, StageRender, fmt.Sprintf("Normalizing scene %d (%.2fs)...", asset.Index, asset.AudioDuration), nil)
		output := r.job.NormalizedPath(asset.Index)
		err := engine.NormalizeScene(ctx, render.NormalizeRequest{
			SourcePath:    source,
			Still:         still,
			Zoom:          !asset.IsEndingScene && !still,
			TargetSeconds: asset.AudioDuration,
			TailSeconds:   tail,
			OutputPath:    output,
		})
		if err != nil {
			return err
		}

		normalized = append(normalized, output)
		audioTracks = append(audioTracks, asset.AudioPath)
		narrationSeconds += asset.AudioDuration
	}

	r.emit(ctx, StageRender, "Concatenating video and narration tracks...", nil)
	combinedVideo := r.job.Path("combined_video.mp4")
	if err := engine.ConcatVideo(ctx, normalized, combinedVideo); err != nil {
		return err
	}
	combinedAudio := r.job.Path("combined_audio.wav")
	if err := engine.ConcatAudio(ctx, audioTracks, combinedAudio); err != nil {
		return err
	}

	musicPath := r.resolveMusic(ctx)

	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "pipeline", "render stage", "create output directory", err)
	}
	finalPath := workspace.FinalPath(cfg.Paths.OutputDir, r.movieName)

	r.emit(ctx, StageRender, "Rendering final video (music mix + captions)...", nil)
	err := engine.Composite(ctx, render.CompositeJob{
		VideoPath:        combinedVideo,
		NarrationPath:    combinedAudio,
		MusicPath:        musicPath,
		SubtitlePath:     r.subtitlePath,
		OutputPath:       finalPath,
		NarrationSeconds: narrationSeconds,
		HasTail:          hasTail,
		MusicVolume:      cfg.Render.MusicVolume,
	})
	if err != nil {
		return err
	}
	return nil
}

// resolveMusic maps the script's music selection to a bundled file.
// A missing file degrades to a music-less mix.
func (r *run) resolveMusic(ctx context.Context) string {
	selected := strings.TrimSpace(r.script.SelectedMusicFile)
	if selected == "" {
		return ""
	}
	path := filepath.Join(r.pipeline.deps.Config.MusicDir(), selected)
	if !fileutil.FileExists(path) {
		r.emit(ctx, StageRender, fmt.Sprintf("Music file %q not found, rendering without music", selected), nil)
		r.pipeline.logger.Warn("selected music file missing", logging.String("file", selected))
		return ""
	}
	return path
}
