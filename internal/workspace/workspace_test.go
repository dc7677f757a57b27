package workspace

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenCreatesAndLocks(t *testing.T) {
	root := t.TempDir()

	job, err := Open(root, "The Dark Knight")
	if err != nil {
		t.Fatal(err)
	}
	defer job.Close()

	if job.Name != "The_Dark_Knight" {
		t.Fatalf("job name %q", job.Name)
	}
	if !strings.HasPrefix(job.Dir, root) {
		t.Fatalf("job dir %q outside root", job.Dir)
	}

	// A second open of the same job must fail while the lock is held.
	if _, err := Open(root, "The Dark Knight"); err == nil {
		t.Fatal("expected second open to fail while locked")
	}

	if err := job.Close(); err != nil {
		t.Fatal(err)
	}
	again, err := Open(root, "The Dark Knight")
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	_ = again.Close()
}

func TestScenePaths(t *testing.T) {
	root := t.TempDir()
	job, err := Open(root, "Alien")
	if err != nil {
		t.Fatal(err)
	}
	defer job.Close()

	if got := job.SceneAudioPath(2); got != filepath.Join(job.Dir, "scene_2_audio.wav") {
		t.Fatalf("audio path %q", got)
	}
	if got := job.SceneVideoPath(0); got != filepath.Join(job.Dir, "scene_0_video.mp4") {
		t.Fatalf("video path %q", got)
	}
	if got := job.NormalizedPath(4); got != filepath.Join(job.Dir, "scene_4_normalized.mp4") {
		t.Fatalf("normalized path %q", got)
	}
}

func TestFinalPath(t *testing.T) {
	got := FinalPath("/out", "Se7en (1995)")
	if got != filepath.Join("/out", "Se7en_1995.mp4") {
		t.Fatalf("final path %q", got)
	}
}
