package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"catscan/internal/history"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded detection runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if jsonOut {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderRunsTable(runs))
			return nil
		},
	}

	runsCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of runs to list (0 for default)")
	runsCmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON output")

	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-image results for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid run id %q", args[0])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("load run: %w", err)
			}
			if run == nil {
				return fmt.Errorf("run %d not found", id)
			}
			results, err := store.ListResults(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("load results: %w", err)
			}

			if jsonOut {
				if results == nil {
					results = []history.Result{}
				}
				return writeJSON(cmd, map[string]any{"run": run, "results": results})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %d (%s) started %s: %s\n",
				run.ID, run.UUID,
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				runStatusLabel(*run),
			)
			fmt.Fprintln(out, renderResultsTable(results))
			fmt.Fprintf(out, "Found %d cats in %d images", run.Cats, run.Total)
			if run.Failures > 0 {
				fmt.Fprintf(out, " (%d failures)", run.Failures)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON output")
	return cmd
}

func runStatusLabel(run history.Run) string {
	switch {
	case !run.Finished():
		return displayLabel("running")
	case run.Aborted:
		return displayLabel("aborted")
	default:
		return displayLabel("completed")
	}
}

func renderRunsTable(runs []history.Run) string {
	headers := []string{"ID", "Started", "Total", "Cats", "Failures", "Status"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(run.Total),
			strconv.Itoa(run.Cats),
			strconv.Itoa(run.Failures),
			runStatusLabel(run),
		})
	}
	return renderTable(headers, rows, aligns)
}

func renderResultsTable(results []history.Result) string {
	headers := []string{"ID", "Image", "Verdict", "Duration"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		verdict := displayLabel("no cat")
		if result.HasCat {
			verdict = displayLabel("cat")
		}
		if result.Failure != "" {
			verdict = displayLabel("failed") + " (" + result.Failure + ")"
		}
		rows = append(rows, []string{
			strconv.Itoa(result.ItemID),
			result.Filename,
			verdict,
			(time.Duration(result.DurationMillis) * time.Millisecond).String(),
		})
	}
	return renderTable(headers, rows, aligns)
}
