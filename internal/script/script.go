package script

import (
	"fmt"
	"strings"
)

// Scene is one narrated beat of the output video.
type Scene struct {
	SceneIndex    int      `json:"scene_index"`
	Narration     string   `json:"narration"`
	VisualQueries []string `json:"visual_queries"`
	Mood          string   `json:"mood,omitempty"`
	TTSSpeed      float64  `json:"tts_speed,omitempty"`
}

// Script is the structured narration/visual plan the pipeline renders.
// Immutable once accepted by the orchestrator.
type Script struct {
	Title             string  `json:"title"`
	Genre             string  `json:"genre,omitempty"`
	OverallMood       string  `json:"overall_mood,omitempty"`
	SelectedVoiceID   string  `json:"selected_voice_id"`
	SelectedMusicFile string  `json:"selected_music_file,omitempty"`
	Scenes            []Scene `json:"scenes"`
}

// Validate checks the shape the pipeline relies on: at least one scene, a
// narration per scene, and scene indexes matching list order.
func (s *Script) Validate() error {
	if s == nil {
		return fmt.Errorf("script is nil")
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("script title is empty")
	}
	if len(s.Scenes) == 0 {
		return fmt.Errorf("script has no scenes")
	}
	for i, scene := range s.Scenes {
		if scene.SceneIndex != i {
			return fmt.Errorf("scene %d has index %d, expected list order", i, scene.SceneIndex)
		}
		if strings.TrimSpace(scene.Narration) == "" {
			return fmt.Errorf("scene %d has no narration", i)
		}
	}
	return nil
}

// Normalize fills in per-scene defaults so downstream components never see
// zero speeds or missing moods.
func (s *Script) Normalize() {
	if s == nil {
		return
	}
	if s.OverallMood == "" {
		s.OverallMood = "neutral"
	}
	for i := range s.Scenes {
		if s.Scenes[i].TTSSpeed == 0 {
			s.Scenes[i].TTSSpeed = 1.0
		}
		if s.Scenes[i].Mood == "" {
			s.Scenes[i].Mood = s.OverallMood
		}
	}
}
