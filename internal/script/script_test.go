package script

import (
	"strings"
	"testing"
)

func validScript() *Script {
	return &Script{
		Title:           "Inception",
		Genre:           "thriller",
		OverallMood:     "tense",
		SelectedVoiceID: "af_bella",
		Scenes: []Scene{
			{SceneIndex: 0, Narration: "A thief who steals secrets.", VisualQueries: []string{"city night", "skyline", "rain"}},
			{SceneIndex: 1, Narration: "Dreams within dreams.", VisualQueries: []string{"spiral stairs", "mirror", "clock"}},
		},
	}
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	s := validScript()
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Script)
		want   string
	}{
		{"no title", func(s *Script) { s.Title = " " }, "title"},
		{"no scenes", func(s *Script) { s.Scenes = nil }, "no scenes"},
		{"out of order index", func(s *Script) { s.Scenes[1].SceneIndex = 5 }, "index"},
		{"empty narration", func(s *Script) { s.Scenes[0].Narration = "" }, "narration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validScript()
			tc.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q missing %q", err, tc.want)
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	s := validScript()
	s.OverallMood = ""
	s.Scenes[0].TTSSpeed = 0
	s.Scenes[0].Mood = ""
	s.Normalize()
	if s.OverallMood != "neutral" {
		t.Fatalf("overall mood %q", s.OverallMood)
	}
	if s.Scenes[0].TTSSpeed != 1.0 {
		t.Fatalf("tts speed %v", s.Scenes[0].TTSSpeed)
	}
	if s.Scenes[0].Mood != "neutral" {
		t.Fatalf("scene mood %q", s.Scenes[0].Mood)
	}
}

func TestDecodeCanonical(t *testing.T) {
	data := []byte(`{
		"title": "Alien",
		"selected_voice_id": "am_adam",
		"scenes": [
			{"scene_index": 0, "narration": "In space.", "visual_queries": ["stars", "spaceship", "void"]}
		]
	}`)
	s, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "Alien" || len(s.Scenes) != 1 {
		t.Fatalf("unexpected script %+v", s)
	}
	if s.Scenes[0].TTSSpeed != 1.0 {
		t.Fatal("normalize not applied on decode")
	}
}

func TestDecodeMigratesLegacyTimeline(t *testing.T) {
	data := []byte(`{
		"title": "Alien",
		"overall_mood": "dread",
		"selected_voice_id": "am_adam",
		"timeline": {
			"beats": [
				{"index": 0, "voiceover": "In space.", "searches": ["stars", "void"], "speed": 1.1},
				{"index": 1, "voiceover": "No one hears you.", "searches": ["dark corridor"]}
			]
		}
	}`)
	s, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Scenes) != 2 {
		t.Fatalf("expected 2 migrated scenes, got %d", len(s.Scenes))
	}
	if s.Scenes[0].Narration != "In space." {
		t.Fatalf("narration %q", s.Scenes[0].Narration)
	}
	if s.Scenes[0].TTSSpeed != 1.1 {
		t.Fatalf("speed %v", s.Scenes[0].TTSSpeed)
	}
	if s.Scenes[1].SceneIndex != 1 {
		t.Fatalf("reindex failed: %d", s.Scenes[1].SceneIndex)
	}
	if s.Scenes[1].Mood != "dread" {
		t.Fatalf("mood default %q", s.Scenes[1].Mood)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte(`{"title": "x"}`)); err == nil {
		t.Fatal("expected error for script without scenes")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatal("expected parse error")
	}
}
