package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set diarization.hf_token if you want pyannote-based speaker attribution.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n\n", ctx.configPath)

			rows := [][]string{
				{"paths.output_dir", cfg.Paths.OutputDir},
				{"paths.work_dir", cfg.Paths.WorkDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"paths.history_db", cfg.Paths.HistoryDB},
				{"paths.model_cache_dir", cfg.Paths.ModelCacheDir},
				{"transcription.model", cfg.Transcription.Model},
				{"transcription.device", cfg.Transcription.Device},
				{"transcription.compute_type", cfg.Transcription.ComputeType},
				{"transcription.workers", fmt.Sprintf("%d", cfg.Transcription.Workers)},
				{"transcription.language", orAuto(cfg.Transcription.Language)},
				{"transcription.vad_enabled", yesNo(cfg.Transcription.VADEnabled)},
				{"transcription.output_formats", strings.Join(cfg.Transcription.OutputFormats, ", ")},
				{"chunking.target_seconds", fmt.Sprintf("%.0f", cfg.Chunking.TargetSeconds)},
				{"chunking.max_seconds", fmt.Sprintf("%.0f", cfg.Chunking.MaxSeconds)},
				{"chunking.min_seconds", fmt.Sprintf("%.0f", cfg.Chunking.MinSeconds)},
				{"chunking.overlap_seconds", fmt.Sprintf("%.1f", cfg.Chunking.OverlapSeconds)},
				{"diarization.enabled", yesNo(cfg.Diarization.Enabled)},
				{"diarization.max_speakers", fmt.Sprintf("%d", cfg.Diarization.MaxSpeakers)},
				{"notifications.ntfy_topic", orNone(cfg.Notifications.NtfyTopic)},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func orAuto(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(auto-detect)"
	}
	return value
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(none)"
	}
	return value
}
