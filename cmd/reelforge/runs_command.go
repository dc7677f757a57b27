package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"reelforge/internal/runlog"
)

const stampLayout = "2006-01-02 15:04"

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded pipeline runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := ctx.openRunLog()
			if err != nil {
				return err
			}
			defer ledger.Close()

			runs, err := ledger.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.RunID,
					run.JobName,
					string(run.Status),
					yesNo(run.Offline),
					run.StartedAt.Local().Format(stampLayout),
					runDuration(run),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Movie", "Status", "Offline", "Started", "Duration"},
				rows,
				[]text.Align{5: text.AlignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its stage events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := ctx.openRunLog()
			if err != nil {
				return err
			}
			defer ledger.Close()

			run, err := ledger.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			stages, err := ledger.Stages(cmd.Context(), run.RunID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:      %s\n", run.RunID)
			fmt.Fprintf(out, "Movie:    %s\n", run.JobName)
			fmt.Fprintf(out, "Status:   %s\n", run.Status)
			fmt.Fprintf(out, "Offline:  %s\n", yesNo(run.Offline))
			fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(stampLayout))
			if !run.FinishedAt.IsZero() {
				fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format(stampLayout))
			}
			if run.FinalPath != "" {
				fmt.Fprintf(out, "Output:   %s\n", run.FinalPath)
			}
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:    %s\n", run.ErrorMessage)
			}

			if len(stages) == 0 {
				fmt.Fprintln(out, "No stage events recorded")
				return nil
			}
			rows := make([][]string, 0, len(stages))
			for _, event := range stages {
				kind := ""
				if event.IsError {
					kind = "error"
				}
				rows = append(rows, []string{
					strconv.Itoa(event.Stage),
					stageNames[event.Stage],
					kind,
					event.Message,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Stage", "", "Message"},
				rows,
				[]text.Align{text.AlignRight},
			))
			return nil
		},
	}
}

func runDuration(run *runlog.Run) string {
	if run.FinishedAt.IsZero() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
