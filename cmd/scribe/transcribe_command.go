package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/history"
	"scribe/internal/logging"
	"scribe/internal/merge"
	"scribe/internal/notifications"
	"scribe/internal/pipeline"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		language  string
		model     string
		vadPreset string
		workers   int
		beamSize  int
		formats   []string
		diarize   bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe an audio or video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("language") {
				cfg.Transcription.Language = language
			}
			if flags.Changed("model") {
				cfg.Transcription.Model = model
			}
			if flags.Changed("vad-preset") {
				cfg.Transcription.VADPreset = vadPreset
				cfg.Transcription.VADEnabled = true
			}
			if flags.Changed("workers") {
				cfg.Transcription.Workers = workers
			}
			if flags.Changed("beam-size") {
				cfg.Transcription.BeamSize = beamSize
			}
			if flags.Changed("format") {
				cfg.Transcription.OutputFormats = formats
			}
			if flags.Changed("diarize") {
				cfg.Diarization.Enabled = diarize
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				OutputPaths: []string{
					"stderr",
					filepath.Join(cfg.Paths.LogDir, "scribe.log"),
				},
			})
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			opts := []pipeline.Option{
				pipeline.WithNotifier(notifications.NewService(
					cfg.Notifications.NtfyTopic, cfg.Notifications.RequestTimeout)),
			}
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				logger.Warn("history unavailable, run will not be recorded", logging.Error(err))
			} else {
				defer store.Close()
				opts = append(opts, pipeline.WithHistory(store))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := pipeline.New(cfg, logger, opts...).Run(runCtx, args[0])
			if err != nil {
				return err
			}

			printRunSummary(cmd, res, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Language hint (ISO 639-1 or name, empty auto-detects)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Recognition model (e.g. medium, large-v3)")
	cmd.Flags().StringVar(&vadPreset, "vad-preset", "", "Enable voice-activity filtering with the named preset")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent recognition workers")
	cmd.Flags().IntVar(&beamSize, "beam-size", 0, "Beam search width")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "Output formats (txt, json, srt, vtt)")
	cmd.Flags().BoolVarP(&diarize, "diarize", "d", false, "Attribute speakers to transcript segments")

	return cmd
}

func printRunSummary(cmd *cobra.Command, res *pipeline.Result, source string) {
	out := cmd.OutOrStdout()
	stats := res.Transcript.Stats

	fmt.Fprintf(out, "Transcribed %s\n", filepath.Base(source))
	if res.Transcript.Language != "" {
		fmt.Fprintf(out, "  Language:   %s\n", res.Transcript.Language)
	}
	fmt.Fprintf(out, "  Segments:   %d", stats.TotalSegments)
	if stats.DedupedSegments > 0 {
		fmt.Fprintf(out, " (%d overlap duplicates removed)", stats.DedupedSegments)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Chunks:     %d", stats.TotalChunks)
	if stats.FailedChunks > 0 {
		fmt.Fprintf(out, " (%d failed)", stats.FailedChunks)
	}
	fmt.Fprintln(out)
	if stats.FailedChunks > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderChunkTable(res.Transcript.Chunks))
	}
	fmt.Fprintf(out, "  Elapsed:    %s", res.Elapsed.Round(time.Second))
	if stats.SpeedRatio > 0 {
		fmt.Fprintf(out, " (%.1fx real time)", 1/stats.SpeedRatio)
	}
	fmt.Fprintln(out)

	if res.Transcript.DiarizationError != "" {
		fmt.Fprintf(out, "  Speakers:   unavailable (%s)\n", res.Transcript.DiarizationError)
	} else if len(res.Transcript.Speakers) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSpeakerTable(res.Transcript.Speakers))
	}

	fmt.Fprintln(out, "Outputs:")
	for _, path := range res.OutputPaths {
		fmt.Fprintf(out, "  %s\n", path)
	}
}

func renderChunkTable(chunks []merge.ChunkDetail) string {
	rows := make([][]string, 0, len(chunks))
	for _, c := range chunks {
		status := "ok"
		if !c.Success {
			status = "failed: " + c.Err
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.ID),
			formatSeconds(c.Start),
			formatSeconds(c.End),
			fmt.Sprintf("%d", c.Segments),
			status,
		})
	}
	return renderTable([]string{"Chunk", "Start", "End", "Segments", "Status"}, rows, 0, 3)
}

func renderSpeakerTable(speakers []merge.SpeakerSummary) string {
	rows := make([][]string, 0, len(speakers))
	for _, s := range speakers {
		rows = append(rows, []string{
			s.Speaker,
			fmt.Sprintf("%d", s.Segments),
			formatSeconds(s.SpeechTime),
		})
	}
	return renderTable([]string{"Speaker", "Segments", "Speech"}, rows, 1, 2)
}

func formatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds + 0.5)
	if total >= 3600 {
		return fmt.Sprintf("%dh%02dm%02ds", total/3600, total%3600/60, total%60)
	}
	if total >= 60 {
		return fmt.Sprintf("%dm%02ds", total/60, total%60)
	}
	return fmt.Sprintf("%ds", total)
}
