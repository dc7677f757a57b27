// Package workspace manages per-job working directories and the advisory
// lock that keeps two runs of the same job from interleaving their
// intermediate files.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"reelforge/internal/textutil"
)

// Job is a locked working directory for one pipeline run.
type Job struct {
	Name string // sanitized job name
	Dir  string

	lock *flock.Flock
}

// Open sanitizes the movie name, creates the job directory under root, and
// acquires its lock. Callers must Close the job when the run finishes.
func Open(root, movieName string) (*Job, error) {
	name := textutil.SanitizeJobName(movieName)
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job directory %q: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, ".reelforge.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire job lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("job %q is already being processed", name)
	}

	return &Job{Name: name, Dir: dir, lock: lock}, nil
}

// Close releases the job lock.
func (j *Job) Close() error {
	if j == nil || j.lock == nil {
		return nil
	}
	return j.lock.Unlock()
}

// Path returns a file path inside the job directory.
func (j *Job) Path(elem ...string) string {
	return filepath.Join(append([]string{j.Dir}, elem...)...)
}

// SceneAudioPath returns the canonical narration audio path for a scene.
func (j *Job) SceneAudioPath(index int) string {
	return j.Path(fmt.Sprintf("scene_%d_audio.wav", index))
}

// SceneVideoPath returns the canonical source footage path for a scene.
func (j *Job) SceneVideoPath(index int) string {
	return j.Path(fmt.Sprintf("scene_%d_video.mp4", index))
}

// NormalizedPath returns the canonical normalized segment path for a scene.
func (j *Job) NormalizedPath(index int) string {
	return j.Path(fmt.Sprintf("scene_%d_normalized.mp4", index))
}

// FinalPath returns the deterministic output path for the finished video.
func FinalPath(outputDir, movieName string) string {
	return filepath.Join(outputDir, textutil.SanitizeJobName(movieName)+".mp4")
}
