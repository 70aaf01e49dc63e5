package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/history"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent transcription runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No recorded runs")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.RunID),
					filepath.Base(run.SourcePath),
					run.Status,
					run.Language,
					fmt.Sprintf("%d", run.TotalChunks),
					fmt.Sprintf("%d", run.TotalSegments),
					formatSpeed(run.SpeedRatio),
					run.FinishedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Source", "Status", "Lang", "Chunks", "Segments", "Speed", "Finished"},
				rows, 4, 5, 6))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")

	cmd.AddCommand(newRunsShowCommand(ctx))
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			run, err := findRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no run matches %q", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s\n", run.RunID)
			fmt.Fprintf(out, "  Source:     %s\n", run.SourcePath)
			fmt.Fprintf(out, "  Status:     %s\n", run.Status)
			if run.Language != "" {
				fmt.Fprintf(out, "  Language:   %s\n", run.Language)
			}
			fmt.Fprintf(out, "  Chunks:     %d total, %d failed\n", run.TotalChunks, run.FailedChunks)
			fmt.Fprintf(out, "  Segments:   %d (%d overlap duplicates removed)\n", run.TotalSegments, run.DedupedSegments)
			fmt.Fprintf(out, "  Duration:   %s source, %s processing\n",
				formatSeconds(run.DurationSeconds), formatSeconds(run.ProcessingSecs))
			if run.SpeedRatio > 0 {
				fmt.Fprintf(out, "  Speed:      %s\n", formatSpeed(run.SpeedRatio))
			}
			fmt.Fprintf(out, "  Started:    %s\n", run.StartedAt.Local().Format(time.RFC1123))
			fmt.Fprintf(out, "  Finished:   %s\n", run.FinishedAt.Local().Format(time.RFC1123))
			if run.DiarizationError != "" {
				fmt.Fprintf(out, "  Speakers:   unavailable (%s)\n", run.DiarizationError)
			}
			if run.Error != "" {
				fmt.Fprintf(out, "  Error:      %s\n", run.Error)
			}
			if len(run.OutputPaths) > 0 {
				fmt.Fprintln(out, "  Outputs:")
				for _, path := range run.OutputPaths {
					fmt.Fprintf(out, "    %s\n", path)
				}
			}
			return nil
		},
	}
}

// findRun resolves a full run ID or the shortened prefix the list view prints.
func findRun(cmd *cobra.Command, store *history.Store, id string) (*history.Run, error) {
	run, err := store.Get(cmd.Context(), id)
	if err != nil || run != nil {
		return run, err
	}

	runs, err := store.List(cmd.Context(), 200)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if strings.HasPrefix(runs[i].RunID, id) {
			return &runs[i], nil
		}
	}
	return nil, nil
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

func formatSpeed(ratio float64) string {
	if ratio <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1fx", 1/ratio)
}
