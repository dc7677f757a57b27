package pipeline

import (
	"reelforge/internal/assets"
	"reelforge/internal/script"
)

// Stage numbers for progress events.
const (
	StageScript     = 1
	StageScenes     = 2
	StageTranscribe = 3
	StageSubtitles  = 4
	StageRender     = 5
)

// Status is one progress event. Scene-local problems arrive as events with
// IsError set while the run continues; a fatal failure is the last error
// event before the stream closes.
type Status struct {
	Stage   int
	Message string
	Data    map[string]any
	IsError bool
}

// Result is the terminal value of a run. An empty SceneAssets list means
// total failure regardless of individual event flags; FinalVideoPath is
// empty unless the full render succeeded.
type Result struct {
	SceneAssets    []assets.SceneAsset
	Script         *script.Script
	FinalVideoPath string
}

// Succeeded reports whether the run produced a finished artifact.
func (r Result) Succeeded() bool {
	return r.FinalVideoPath != "" && len(r.SceneAssets) > 0
}
