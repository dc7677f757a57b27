package script

import (
	"encoding/json"
	"fmt"
)

// legacyDocument matches the deprecated cache shape that stored scenes under
// "timeline.beats" with differently named fields. Decode only migrates it;
// new documents are always written in the canonical shape.
type legacyDocument struct {
	Title    string `json:"title"`
	Genre    string `json:"genre"`
	Mood     string `json:"overall_mood"`
	VoiceID  string `json:"selected_voice_id"`
	Music    string `json:"selected_music_file"`
	Timeline struct {
		Beats []struct {
			Index     int      `json:"index"`
			Voiceover string   `json:"voiceover"`
			Searches  []string `json:"searches"`
			Mood      string   `json:"mood"`
			Speed     float64  `json:"speed"`
		} `json:"beats"`
	} `json:"timeline"`
}

// Decode parses a script document, accepting both the canonical "scenes"
// shape and the legacy "timeline.beats" shape. Legacy input is migrated to
// the canonical form; mixed documents prefer the canonical field.
func Decode(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Scenes) == 0 {
		var legacy legacyDocument
		if err := json.Unmarshal(data, &legacy); err == nil && len(legacy.Timeline.Beats) > 0 {
			s = migrateLegacy(legacy)
		}
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func migrateLegacy(legacy legacyDocument) Script {
	s := Script{
		Title:             legacy.Title,
		Genre:             legacy.Genre,
		OverallMood:       legacy.Mood,
		SelectedVoiceID:   legacy.VoiceID,
		SelectedMusicFile: legacy.Music,
		Scenes:            make([]Scene, 0, len(legacy.Timeline.Beats)),
	}
	for i, beat := range legacy.Timeline.Beats {
		s.Scenes = append(s.Scenes, Scene{
			SceneIndex:    i,
			Narration:     beat.Voiceover,
			VisualQueries: beat.Searches,
			Mood:          beat.Mood,
			TTSSpeed:      beat.Speed,
		})
	}
	return s
}
