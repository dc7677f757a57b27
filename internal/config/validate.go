package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the pipeline cannot run with.
// Credential checks are deferred to the services that need them so offline
// replay works without any API keys.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		problems = append(problems, "paths.workspace_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		problems = append(problems, "paths.output_dir must be set")
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		problems = append(problems, fmt.Sprintf("render dimensions %dx%d are invalid", c.Render.Width, c.Render.Height))
	}
	if c.Render.Width%2 != 0 || c.Render.Height%2 != 0 {
		problems = append(problems, "render dimensions must be even for yuv420p output")
	}
	if c.Render.FPS <= 0 {
		problems = append(problems, "render.fps must be positive")
	}
	if c.Render.MusicVolume < 0 || c.Render.MusicVolume > 1 {
		problems = append(problems, fmt.Sprintf("render.music_volume %v must be within [0, 1]", c.Render.MusicVolume))
	}
	if c.Render.TailSeconds < 0 {
		problems = append(problems, "render.tail_seconds cannot be negative")
	}
	if c.Render.WordsPerEvent <= 0 {
		problems = append(problems, "render.words_per_event must be at least 1")
	}
	if c.Story.SceneCount <= 0 {
		problems = append(problems, "story.scene_count must be at least 1")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
