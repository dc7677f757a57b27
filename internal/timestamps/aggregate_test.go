package timestamps

import (
	"context"
	"errors"
	"math"
	"testing"

	"reelforge/internal/logging"
)

type fakeTranscriber struct {
	words map[string][]Word
	fail  map[string]bool
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audioPath string) ([]Word, error) {
	if f.fail[audioPath] {
		return nil, errors.New("model crashed")
	}
	return f.words[audioPath], nil
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAggregateOffsetsByPriorDurations(t *testing.T) {
	tr := &fakeTranscriber{words: map[string][]Word{
		"s0.wav": {{Word: "The", Start: 0.1, End: 0.4}, {Word: "heist", Start: 0.5, End: 0.9}},
		"s1.wav": {{Word: "begins", Start: 0.2, End: 0.7}},
		"s2.wav": {{Word: "tonight", Start: 0.0, End: 0.6}},
	}}
	scenes := []SceneAudio{
		{Index: 0, AudioPath: "s0.wav", DurationSeconds: 4.0},
		{Index: 1, AudioPath: "s1.wav", DurationSeconds: 5.5},
		{Index: 2, AudioPath: "s2.wav", DurationSeconds: 3.2},
	}

	result := Aggregate(context.Background(), tr, scenes, logging.NewNop())

	if len(result.Global) != 4 {
		t.Fatalf("global words = %d, want 4", len(result.Global))
	}
	// Scene 1 shifts by 4.0, scene 2 by 4.0+5.5.
	if got := result.Global[2].Start; !almostEqual(got, 4.2) {
		t.Errorf("scene 1 word start = %v, want 4.2", got)
	}
	if got := result.Global[3].Start; !almostEqual(got, 9.5) {
		t.Errorf("scene 2 word start = %v, want 9.5", got)
	}
	for i := 1; i < len(result.Global); i++ {
		if result.Global[i].Start < result.Global[i-1].Start {
			t.Errorf("global starts not monotonic at %d: %v < %v", i, result.Global[i].Start, result.Global[i-1].Start)
		}
	}
	// Scene-local words stay unshifted.
	if got := result.SceneWords[1][0].Start; !almostEqual(got, 0.2) {
		t.Errorf("scene-local start = %v, want 0.2", got)
	}
}

func TestAggregateFailedSceneStillAdvancesOffset(t *testing.T) {
	tr := &fakeTranscriber{
		words: map[string][]Word{
			"s0.wav": {{Word: "one", Start: 0.0, End: 0.3}},
			"s2.wav": {{Word: "three", Start: 0.1, End: 0.5}},
		},
		fail: map[string]bool{"s1.wav": true},
	}
	scenes := []SceneAudio{
		{Index: 0, AudioPath: "s0.wav", DurationSeconds: 2.0},
		{Index: 1, AudioPath: "s1.wav", DurationSeconds: 6.0},
		{Index: 2, AudioPath: "s2.wav", DurationSeconds: 3.0},
	}

	result := Aggregate(context.Background(), tr, scenes, logging.NewNop())

	if len(result.SceneWords[1]) != 0 {
		t.Errorf("failed scene should carry no words, got %v", result.SceneWords[1])
	}
	// The failed scene's 6.0s still counts toward scene 2's offset.
	if got := result.Global[1].Start; !almostEqual(got, 8.1) {
		t.Errorf("post-failure word start = %v, want 8.1", got)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	result := Aggregate(context.Background(), &fakeTranscriber{}, nil, logging.NewNop())
	if len(result.Global) != 0 || len(result.SceneWords) != 0 {
		t.Errorf("empty input should produce empty result, got %+v", result)
	}
}
