package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/services"
)

type fakeRunner struct {
	calls  [][]string
	output []byte
	err    error
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)
	return f.output, f.err
}

func newTestEngine(t *testing.T, runner *fakeRunner) *Engine {
	t.Helper()
	engine := NewEngine(config.Render{Width: 1080, Height: 1920, FPS: 30}, logging.NewNop())
	engine.WithCommandRunner(runner.run)
	return engine
}

func lastCall(t *testing.T, runner *fakeRunner) []string {
	t.Helper()
	if len(runner.calls) == 0 {
		t.Fatal("expected at least one ffmpeg invocation")
	}
	return runner.calls[len(runner.calls)-1]
}

func argAfter(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %q not found in %v", flag, args)
	return ""
}

func TestNormalizeSceneClipArgs(t *testing.T) {
	runner := &fakeRunner{}
	engine := newTestEngine(t, runner)

	err := engine.NormalizeScene(context.Background(), NormalizeRequest{
		SourcePath:    "/work/scene_0.mp4",
		Zoom:          true,
		TargetSeconds: 7.25,
		OutputPath:    "/work/scene_0_normalized.mp4",
	})
	if err != nil {
		t.Fatalf("NormalizeScene: %v", err)
	}

	args := lastCall(t, runner)
	if !slices.Contains(args, "-stream_loop") {
		t.Errorf("motion clip should loop with -stream_loop, got %v", args)
	}
	if got := argAfter(t, args, "-t"); got != "7.250" {
		t.Errorf("trim duration = %q, want 7.250", got)
	}
	filter := argAfter(t, args, "-vf")
	for _, want := range []string{
		"scale=1080:1920:force_original_aspect_ratio=increase",
		"crop=1080:1920",
		"zoompan=",
		"setsar=1",
	} {
		if !strings.Contains(filter, want) {
			t.Errorf("filter %q missing %q", filter, want)
		}
	}
	if !slices.Contains(args, "-an") {
		t.Errorf("normalized segment must strip audio, got %v", args)
	}
	if got := argAfter(t, args, "-r"); got != "30" {
		t.Errorf("frame rate = %q, want 30", got)
	}
}

func TestNormalizeSceneStillWithTail(t *testing.T) {
	runner := &fakeRunner{}
	engine := newTestEngine(t, runner)

	err := engine.NormalizeScene(context.Background(), NormalizeRequest{
		SourcePath:    "/work/poster.jpg",
		Still:         true,
		TargetSeconds: 4.0,
		TailSeconds:   2.5,
		OutputPath:    "/work/ending_normalized.mp4",
	})
	if err != nil {
		t.Fatalf("NormalizeScene: %v", err)
	}

	args := lastCall(t, runner)
	if got := argAfter(t, args, "-loop"); got != "1" {
		t.Errorf("still source should use -loop 1, got %v", args)
	}
	if slices.Contains(args, "-stream_loop") {
		t.Errorf("still source must not use -stream_loop, got %v", args)
	}
	if got := argAfter(t, args, "-t"); got != "6.500" {
		t.Errorf("trim duration = %q, want narration+tail 6.500", got)
	}
	if filter := argAfter(t, args, "-vf"); strings.Contains(filter, "zoompan") {
		t.Errorf("zoom disabled but filter contains zoompan: %q", filter)
	}
}

func TestNormalizeSceneValidation(t *testing.T) {
	runner := &fakeRunner{}
	engine := newTestEngine(t, runner)

	err := engine.NormalizeScene(context.Background(), NormalizeRequest{TargetSeconds: 5})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("missing source should fail validation, got %v", err)
	}
	err = engine.NormalizeScene(context.Background(), NormalizeRequest{SourcePath: "x.mp4"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("zero duration should fail validation, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("validation failures must not invoke ffmpeg, got %d calls", len(runner.calls))
	}
}

func TestNormalizeSceneToolFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	engine := newTestEngine(t, runner)

	err := engine.NormalizeScene(context.Background(), NormalizeRequest{
		SourcePath:    "x.mp4",
		TargetSeconds: 3,
		OutputPath:    "out.mp4",
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("want external tool error, got %v", err)
	}
}

func TestConcatVideoWritesListAndStreamCopies(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "combined.mp4")

	var listContents string
	runner := &fakeRunner{}
	engine := newTestEngine(t, runner)
	engine.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		// Capture the list file before the deferred cleanup removes it.
		data, err := os.ReadFile(output + ".list")
		if err != nil {
			t.Fatalf("read concat list: %v", err)
		}
		listContents = string(data)
		return runner.run(ctx, name, args...)
	})

	segments := []string{
		filepath.Join(dir, "scene_0_normalized.mp4"),
		filepath.Join(dir, "it's scene_1.mp4"),
	}
	if err := engine.ConcatVideo(context.Background(), segments, output); err != nil {
		t.Fatalf("ConcatVideo: %v", err)
	}

	args := lastCall(t, runner)
	if got := argAfter(t, args, "-f"); got != "concat" {
		t.Errorf("demuxer = %q, want concat", got)
	}
	if got := argAfter(t, args, "-c"); got != "copy" {
		t.Errorf("codec = %q, want stream copy", got)
	}
	lines := strings.Split(strings.TrimSpace(listContents), "\n")
	if len(lines) != 2 {
		t.Fatalf("list has %d lines, want 2: %q", len(lines), listContents)
	}
	if !strings.Contains(lines[1], `it'\''s scene_1.mp4`) {
		t.Errorf("apostrophe not escaped in list entry %q", lines[1])
	}
	if _, err := os.Stat(output + ".list"); !os.IsNotExist(err) {
		t.Errorf("concat list should be removed after the run")
	}
}

func TestConcatAudioUsesLosslessPCM(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	engine := newTestEngine(t, runner)

	output := filepath.Join(dir, "narration.wav")
	tracks := []string{filepath.Join(dir, "scene_0_audio.wav")}
	if err := engine.ConcatAudio(context.Background(), tracks, output); err != nil {
		t.Fatalf("ConcatAudio: %v", err)
	}

	args := lastCall(t, runner)
	if got := argAfter(t, args, "-c:a"); got != "pcm_s16le" {
		t.Errorf("audio codec = %q, want pcm_s16le", got)
	}
}

func TestConcatRejectsEmptyInput(t *testing.T) {
	engine := newTestEngine(t, &fakeRunner{})
	if err := engine.ConcatVideo(context.Background(), nil, "out.mp4"); !errors.Is(err, services.ErrValidation) {
		t.Errorf("empty segment list should fail validation, got %v", err)
	}
	if err := engine.ConcatAudio(context.Background(), nil, "out.wav"); !errors.Is(err, services.ErrValidation) {
		t.Errorf("empty track list should fail validation, got %v", err)
	}
}

func TestCompositeWithMusicAndCaptions(t *testing.T) {
	runner := &fakeRunner{output: []byte(" T.. subtitles         V->V  Overlay text subtitles\n")}
	engine := newTestEngine(t, runner)
	engine.WithDurationProbe(func(context.Context, string) (float64, error) { return 30.2, nil })

	err := engine.Composite(context.Background(), CompositeJob{
		VideoPath:        "combined.mp4",
		NarrationPath:    "narration.wav",
		MusicPath:        "/assets/music/tense.mp3",
		SubtitlePath:     "/work/captions.ass",
		OutputPath:       "final.mp4",
		NarrationSeconds: 30.0,
		MusicVolume:      0.22,
	})
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}

	args := lastCall(t, runner)
	if got := argAfter(t, args, "-stream_loop"); got != "-1" {
		t.Errorf("music must loop indefinitely, got %v", args)
	}
	filter := argAfter(t, args, "-filter_complex")
	for _, want := range []string{
		"subtitles='/work/captions.ass'",
		"volume=0.220",
		"sidechaincompress=",
		"amix=inputs=2",
	} {
		if !strings.Contains(filter, want) {
			t.Errorf("filter graph %q missing %q", filter, want)
		}
	}
	// Narration is authoritative without a tail.
	if got := argAfter(t, args, "-t"); got != "30.000" {
		t.Errorf("output bound = %q, want 30.000", got)
	}
	if got := argAfter(t, args, "-c:v"); got != "libx264" {
		t.Errorf("burn-in requires re-encode, got codec %q", got)
	}
	if got := argAfter(t, args, "-c:a"); got != "aac" {
		t.Errorf("audio codec = %q, want aac", got)
	}
}

func TestCompositeVideoAuthoritativeWithTail(t *testing.T) {
	runner := &fakeRunner{}
	engine := newTestEngine(t, runner)
	engine.WithDurationProbe(func(context.Context, string) (float64, error) { return 32.5, nil })

	err := engine.Composite(context.Background(), CompositeJob{
		VideoPath:        "combined.mp4",
		NarrationPath:    "narration.wav",
		OutputPath:       "final.mp4",
		NarrationSeconds: 30.0,
		HasTail:          true,
	})
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}

	args := lastCall(t, runner)
	if got := argAfter(t, args, "-t"); got != "32.500" {
		t.Errorf("output bound = %q, want probed video length 32.500", got)
	}
	// No captions means the video track stream-copies.
	if got := argAfter(t, args, "-c:v"); got != "copy" {
		t.Errorf("video codec = %q, want copy", got)
	}
	filter := argAfter(t, args, "-filter_complex")
	if !strings.Contains(filter, "apad") {
		t.Errorf("tail without music needs apad, filter %q", filter)
	}
}

func TestCompositeSkipsCaptionsWithoutFilterSupport(t *testing.T) {
	runner := &fakeRunner{output: []byte("no such filter here\n")}
	engine := newTestEngine(t, runner)
	engine.WithDurationProbe(func(context.Context, string) (float64, error) { return 10, nil })

	err := engine.Composite(context.Background(), CompositeJob{
		VideoPath:        "combined.mp4",
		NarrationPath:    "narration.wav",
		SubtitlePath:     "captions.ass",
		OutputPath:       "final.mp4",
		NarrationSeconds: 10,
	})
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}

	args := lastCall(t, runner)
	for _, arg := range args {
		if strings.Contains(arg, "subtitles=") {
			t.Errorf("captions should be skipped, args %v", args)
		}
	}
	if got := argAfter(t, args, "-c:v"); got != "copy" {
		t.Errorf("no burn-in should stream copy, got %q", got)
	}
}

func TestSupportsSubtitleBurnInProbesOnce(t *testing.T) {
	runner := &fakeRunner{output: []byte(" T.. subtitles V->V Overlay text subtitles\n")}
	engine := newTestEngine(t, runner)

	if !engine.SupportsSubtitleBurnIn(context.Background()) {
		t.Fatal("expected subtitle support from probe output")
	}
	engine.SupportsSubtitleBurnIn(context.Background())
	if len(runner.calls) != 1 {
		t.Errorf("capability probe should run once, got %d calls", len(runner.calls))
	}
}
