package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelforge/internal/pipeline"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
workspace_dir = %q
assets_dir = %q
output_dir = %q
log_dir = %q
`,
		filepath.Join(base, "workspace"),
		filepath.Join(base, "assets"),
		filepath.Join(base, "output"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output %q does not contain %q", output, want)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// Re-running without --overwrite refuses to clobber the file.
	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing config file")
	}
}

func TestConfigValidateShowsResolvedSetup(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"TMDB_API_KEY", "PEXELS_API_KEY", "TTS_API_KEY", "STORY_API_KEY"} {
		t.Setenv(key, "")
	}

	out, err := runCLI(t, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "1080x1920 @ 30 fps")
	requireContains(t, out, "tmdb not set")
}

func TestGenerateRequiresMovieName(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := runCLI(t, configPath, "generate")
	if err == nil || !strings.Contains(err.Error(), "movie name required") {
		t.Fatalf("err = %v", err)
	}
}

func TestCacheClearWithoutCache(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCLI(t, configPath, "cache", "clear", "Missing Movie")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "No cache for")
}

func TestRunsListEmpty(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCLI(t, configPath, "runs", "list")
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "No recorded runs")
}

func TestReadBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.txt")
	content := "The Vanishing\n\n# a comment\n  Heat  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := readBatchFile(path)
	if err != nil {
		t.Fatalf("readBatchFile: %v", err)
	}
	if len(names) != 2 || names[0] != "The Vanishing" || names[1] != "Heat" {
		t.Errorf("names = %v", names)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("# only comments\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readBatchFile(empty); err == nil {
		t.Fatal("expected error for empty batch file")
	}
}

func TestPrintStatusPlainWhenPiped(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, pipeline.Status{Stage: pipeline.StageRender, Message: "encoding"})
	if got := buf.String(); got != "[render] encoding\n" {
		t.Errorf("output = %q", got)
	}

	buf.Reset()
	printStatus(&buf, pipeline.Status{Stage: pipeline.StageScenes, Message: "scene 2 failed", IsError: true})
	if got := buf.String(); got != "[scenes] error: scene 2 failed\n" {
		t.Errorf("output = %q", got)
	}
}

func TestMusicFilesFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"tense.mp3", "calm.WAV", "notes.txt", "score.flac"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files := musicFiles(dir)
	want := []string{"calm.WAV", "score.flac", "tense.mp3"}
	if len(files) != len(want) {
		t.Fatalf("files = %v", files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, files[i], want[i])
		}
	}

	if got := musicFiles(filepath.Join(dir, "missing")); got != nil {
		t.Errorf("missing dir = %v", got)
	}
}
