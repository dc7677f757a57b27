package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"reelforge/internal/pipeline"
)

const (
	ansiRed   = "\x1b[31m"
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

var stageNames = map[int]string{
	pipeline.StageScript:     "script",
	pipeline.StageScenes:     "scenes",
	pipeline.StageTranscribe: "transcribe",
	pipeline.StageSubtitles:  "subtitles",
	pipeline.StageRender:     "render",
}

// printStatus renders one progress event. Errors stand out in red on a
// terminal; piped output stays plain.
func printStatus(out io.Writer, status pipeline.Status) {
	stage := stageNames[status.Stage]
	if stage == "" {
		stage = fmt.Sprintf("stage %d", status.Stage)
	}

	if !colorEnabled(out) {
		if status.IsError {
			fmt.Fprintf(out, "[%s] error: %s\n", stage, status.Message)
			return
		}
		fmt.Fprintf(out, "[%s] %s\n", stage, status.Message)
		return
	}

	if status.IsError {
		fmt.Fprintf(out, "%s[%s]%s %serror:%s %s\n", ansiDim, stage, ansiReset, ansiRed, ansiReset, status.Message)
		return
	}
	fmt.Fprintf(out, "%s[%s]%s %s\n", ansiDim, stage, ansiReset, status.Message)
}

func colorEnabled(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
