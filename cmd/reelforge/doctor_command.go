package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and API credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Defaults(
				cfg.Render.FFmpegBinary,
				cfg.Render.FFprobeBinary,
				cfg.Whisper.Command,
			))

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					}
				}
				detail := status.Detail
				if detail == "" {
					detail = status.Command
				}
				rows = append(rows, []string{status.Name, state, detail})
			}

			keyRows := [][]string{
				{"TMDB", keyState(cfg.TMDB.APIKey)},
				{"Pexels", keyState(cfg.Pexels.APIKey)},
				{"TTS", keyState(cfg.TTS.APIKey)},
				{"Story", keyState(cfg.Story.APIKey)},
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Status", "Detail"},
				rows,
				nil,
			))
			fmt.Fprintln(out, renderTable(
				[]string{"API key", "Status"},
				keyRows,
				nil,
			))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

func keyState(key string) string {
	if strings.TrimSpace(key) == "" {
		return "not set"
	}
	return "set"
}
