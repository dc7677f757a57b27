package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"reelforge/internal/pipeline"
	"reelforge/internal/runlog"
	"reelforge/internal/services"
	"reelforge/internal/textutil"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	var batchFile string

	cmd := &cobra.Command{
		Use:   "generate [movie name]",
		Short: "Generate a short video for a movie",
		Long: `Generate runs the full pipeline: script generation, scene asset
acquisition, transcription, subtitles, and the final render. With --offline
every external call is replaced by a cache lookup from a previous online run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := resolveJobNames(args, batchFile)
			if err != nil {
				return err
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			pipe, err := ctx.newPipeline(logger)
			if err != nil {
				return err
			}
			ledger, err := ctx.openRunLog()
			if err != nil {
				return err
			}
			defer ledger.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var failed []string
			for _, name := range names {
				if err := runCtx.Err(); err != nil {
					return err
				}
				if err := runOne(runCtx, cmd.OutOrStdout(), pipe, ledger, name, offline); err != nil {
					if errors.Is(err, context.Canceled) {
						return err
					}
					failed = append(failed, name)
					fmt.Fprintf(cmd.OutOrStdout(), "%s failed: %v\n", name, err)
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d runs failed: %s", len(failed), len(names), strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Replay from the scene cache without network access")
	cmd.Flags().StringVar(&batchFile, "batch", "", "File with one movie name per line")
	return cmd
}

func resolveJobNames(args []string, batchFile string) ([]string, error) {
	if batchFile != "" {
		if len(args) > 0 {
			return nil, errors.New("pass either a movie name or --batch, not both")
		}
		return readBatchFile(batchFile)
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, errors.New("movie name required (or use --batch)")
	}
	return []string{strings.TrimSpace(args[0])}, nil
}

func readBatchFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("batch file %s contains no movie names", path)
	}
	return names, nil
}

// runOne executes the pipeline for a single movie, streaming progress to out
// and recording every stage event in the run ledger.
func runOne(ctx context.Context, out io.Writer, pipe *pipeline.Pipeline, ledger *runlog.Store, name string, offline bool) error {
	record, err := ledger.StartRun(ctx, name, offline)
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	fmt.Fprintf(out, "Generating %q (run %s)\n", textutil.DisplayTitle(name), record.RunID)

	// Correlates pipeline log lines with the ledger entry.
	ctx = services.WithRunID(ctx, record.RunID)

	execution := pipe.Run(ctx, name, offline)

	var lastError string
	for event := range execution.Events() {
		printStatus(out, event)
		if event.IsError {
			lastError = event.Message
		}
		if err := ledger.RecordStage(ctx, record.RunID, event.Stage, event.Message, event.IsError); err != nil {
			fmt.Fprintf(out, "warning: record stage event: %v\n", err)
		}
	}

	result := execution.Result()
	if !result.Succeeded() {
		if lastError == "" {
			lastError = "pipeline produced no output"
		}
		if err := ledger.FinishRun(ctx, record.RunID, runlog.StatusFailed, "", lastError); err != nil {
			fmt.Fprintf(out, "warning: record run outcome: %v\n", err)
		}
		return errors.New(lastError)
	}

	if err := ledger.FinishRun(ctx, record.RunID, runlog.StatusCompleted, result.FinalVideoPath, ""); err != nil {
		fmt.Fprintf(out, "warning: record run outcome: %v\n", err)
	}
	fmt.Fprintf(out, "Done: %s\n", result.FinalVideoPath)
	return nil
}
