package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/pipeline"
	"reelforge/internal/render"
	"reelforge/internal/runlog"
	"reelforge/internal/services/pexels"
	"reelforge/internal/services/story"
	"reelforge/internal/services/tmdb"
	"reelforge/internal/services/tts"
	"reelforge/internal/services/whisper"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "reelforge.log")},
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// newPipeline wires the full collaborator set from configuration.
func (c *commandContext) newPipeline(logger *slog.Logger) (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Deps{
		Config:      cfg,
		Logger:      logger,
		Story:       story.NewClient(cfg.Story, musicFiles(cfg.MusicDir())),
		Metadata:    tmdb.NewClient(cfg.TMDB),
		TTS:         tts.NewClient(cfg.TTS, cfg.Render.FFprobeBinary),
		Footage:     pexels.NewClient(cfg.Pexels, logger),
		Transcriber: whisper.NewService(cfg.Whisper),
		Engine:      render.NewEngine(cfg.Render, logger),
		Cache:       assets.NewCacheStore(cfg.Paths.WorkspaceDir, logger),
	})
}

func (c *commandContext) openRunLog() (*runlog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return runlog.Open(cfg.Paths.LogDir)
}

// musicFiles lists bundled music tracks by base name so the script service
// can pick one. A missing directory just means no music.
func musicFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".mp3", ".wav", ".m4a", ".flac", ".ogg":
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files
}
