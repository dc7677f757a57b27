package assets

import "reelforge/internal/timestamps"

// MovieDetails is the metadata-lookup result a job is keyed on.
type MovieDetails struct {
	Title      string `json:"title"`
	Year       string `json:"year,omitempty"`
	Tagline    string `json:"tagline,omitempty"`
	Overview   string `json:"overview,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`
}

// FootageMeta records where a scene's footage came from.
type FootageMeta struct {
	// Source names the provider ("pexels", "fallback", "poster").
	Source string `json:"source"`
	// Query is the search string that matched, empty for fallbacks.
	Query string `json:"query,omitempty"`
	// Fallback marks the bundled local clip substituted after a failed
	// search; the scene still succeeds, degraded.
	Fallback bool `json:"fallback,omitempty"`
}

// SceneAsset is one fully-acquired scene. Built by the coordinator, its
// word timestamps are attached after transcription and nothing mutates it
// once caption synthesis starts.
type SceneAsset struct {
	Index         int
	Narration     string
	VisualQueries []string
	AudioPath     string
	// AudioDuration is the authoritative duration for this scene in
	// seconds; normalization and the global timeline both key off it.
	AudioDuration float64
	// VideoPath and PosterPath are mutually significant: a poster marks
	// a still-image source (the ending scene).
	VideoPath      string
	PosterPath     string
	VideoMeta      FootageMeta
	WordTimestamps []timestamps.Word
	IsEndingScene  bool
}

// SourcePath returns the visual source for normalization and whether it is
// a still image.
func (a SceneAsset) SourcePath() (string, bool) {
	if a.PosterPath != "" {
		return a.PosterPath, true
	}
	return a.VideoPath, false
}
