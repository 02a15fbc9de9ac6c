package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"catscan/internal/batch"
	"catscan/internal/detector"
	"catscan/internal/history"
	"catscan/internal/logging"
	"catscan/internal/samples"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

type scanResult struct {
	ID         int    `json:"id"`
	Filename   string `json:"filename"`
	HasCat     bool   `json:"has_cat"`
	Failure    string `json:"failure,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type scanSummary struct {
	Total    int          `json:"total"`
	Cats     int          `json:"cats"`
	Failures int          `json:"failures"`
	Results  []scanResult `json:"results"`
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one detection batch in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			items, err := samples.List(cfg.Paths.SamplesDir)
			if err != nil {
				return fmt.Errorf("enumerate samples: %w", err)
			}
			if len(items) == 0 {
				fmt.Fprintf(out, "No images found under %s\n", cfg.Paths.SamplesDir)
				return nil
			}

			logger, err := logging.New(logging.Options{
				Level:  "warn",
				Format: "console",
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			// Pacing exists for the browser stream; terminal runs go full speed.
			scanCfg := *cfg
			scanCfg.Stream.ProcessingDelayMillis = 0
			scanCfg.Stream.ResultDelayMillis = 0

			var store *history.Store
			var run *history.Run
			if !noHistory {
				store, err = history.Open(cfg)
				if err != nil {
					return fmt.Errorf("open run history: %w", err)
				}
				defer store.Close()
				run, err = store.StartRun(cmd.Context(), len(items))
				if err != nil {
					return fmt.Errorf("start run record: %w", err)
				}
			}

			colorize := !jsonOut && shouldColorize(out)
			summary := scanSummary{Total: len(items), Results: make([]scanResult, 0, len(items))}

			runner := batch.New(&scanCfg, detector.New(&scanCfg, logger), logger)
			runner.Observe(func(item samples.Item, outcome detector.Outcome) {
				result := scanResult{
					ID:         item.ID,
					Filename:   item.Filename,
					HasCat:     outcome.HasCat,
					Failure:    outcome.Failure,
					DurationMS: outcome.Duration.Milliseconds(),
				}
				summary.Results = append(summary.Results, result)
				if outcome.HasCat {
					summary.Cats++
				}
				if outcome.Failure != "" {
					summary.Failures++
				}
				if !jsonOut {
					printScanProgress(out, item, outcome, colorize)
				}
				if run != nil {
					recordErr := store.RecordResult(cmd.Context(), history.Result{
						RunID:          run.ID,
						ItemID:         item.ID,
						Filename:       item.Filename,
						HasCat:         outcome.HasCat,
						Failure:        outcome.Failure,
						DurationMillis: outcome.Duration.Milliseconds(),
					})
					if recordErr != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "warn: record result: %v\n", recordErr)
					}
				}
			})

			runErr := runner.Run(cmd.Context(), items, batch.SinkFunc(func(batch.Event) error { return nil }))
			if run != nil {
				if err := store.FinishRun(cmd.Context(), run.ID, runErr != nil); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: finish run record: %v\n", err)
				}
			}
			if runErr != nil {
				return runErr
			}

			if jsonOut {
				return writeJSON(cmd, summary)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderScanTable(summary.Results))
			fmt.Fprintf(out, "Found %d cats in %d images", summary.Cats, summary.Total)
			if summary.Failures > 0 {
				fmt.Fprintf(out, " (%d failures)", summary.Failures)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON output")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording the run in history")
	return cmd
}

func printScanProgress(out io.Writer, item samples.Item, outcome detector.Outcome, colorize bool) {
	marker := "-"
	color := ""
	switch {
	case outcome.Failure != "":
		marker = "!"
		color = ansiRed
	case outcome.HasCat:
		marker = "+"
		color = ansiGreen
	}
	line := fmt.Sprintf("%s %-30s %s", marker, item.Filename, verdictLabel(outcome))
	if colorize && color != "" {
		line = color + line + ansiReset
	}
	fmt.Fprintln(out, line)
}

func verdictLabel(outcome detector.Outcome) string {
	switch {
	case outcome.Failure != "":
		return displayLabel("failed") + " (" + outcome.Failure + ")"
	case outcome.HasCat:
		return displayLabel("cat")
	default:
		return displayLabel("no cat")
	}
}

func renderScanTable(results []scanResult) string {
	headers := []string{"ID", "Image", "Verdict", "Duration"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		verdict := displayLabel("no cat")
		if result.HasCat {
			verdict = displayLabel("cat")
		}
		if result.Failure != "" {
			verdict = displayLabel("failed")
		}
		rows = append(rows, []string{
			strconv.Itoa(result.ID),
			result.Filename,
			verdict,
			(time.Duration(result.DurationMS) * time.Millisecond).String(),
		})
	}
	return renderTable(headers, rows, aligns)
}
