package config

import (
	"fmt"
	"strings"

	"scribe/internal/vad"
)

var validFormats = map[string]bool{
	"txt":  true,
	"json": true,
	"srt":  true,
	"vtt":  true,
}

var validComputeTypes = map[string]bool{
	"int8":    true,
	"float16": true,
	"float32": true,
}

// Validate checks the configuration for values that would break a run.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.OutputDir == "" {
		problems = append(problems, "paths.output_dir is required")
	}
	if c.Paths.WorkDir == "" {
		problems = append(problems, "paths.work_dir is required")
	}

	if c.Transcription.Model == "" {
		problems = append(problems, "transcription.model is required")
	}
	if c.Transcription.Device != "cpu" && c.Transcription.Device != "cuda" {
		problems = append(problems, fmt.Sprintf("transcription.device must be cpu or cuda, got %q", c.Transcription.Device))
	}
	if !validComputeTypes[c.Transcription.ComputeType] {
		problems = append(problems, fmt.Sprintf("transcription.compute_type must be int8, float16, or float32, got %q", c.Transcription.ComputeType))
	}
	if c.Transcription.BeamSize < 1 {
		problems = append(problems, fmt.Sprintf("transcription.beam_size must be at least 1, got %d", c.Transcription.BeamSize))
	}
	if c.Transcription.Workers < 1 {
		problems = append(problems, fmt.Sprintf("transcription.workers must be at least 1, got %d", c.Transcription.Workers))
	}
	if c.Transcription.VADEnabled {
		if _, err := vad.Lookup(c.Transcription.VADPreset); err != nil {
			problems = append(problems, err.Error())
		}
	}
	for _, format := range c.Transcription.OutputFormats {
		if !validFormats[format] {
			problems = append(problems, fmt.Sprintf("transcription.output_formats: unknown format %q", format))
		}
	}

	ch := c.Chunking
	if ch.TargetSeconds <= 0 {
		problems = append(problems, "chunking.target_seconds must be positive")
	}
	if ch.MaxSeconds < ch.TargetSeconds {
		problems = append(problems, "chunking.max_seconds must be at least target_seconds")
	}
	if ch.MinSeconds <= 0 || ch.MinSeconds >= ch.TargetSeconds {
		problems = append(problems, "chunking.min_seconds must be positive and below target_seconds")
	}
	if ch.OverlapSeconds < 0 || ch.OverlapSeconds >= ch.MinSeconds {
		problems = append(problems, "chunking.overlap_seconds must be non-negative and below min_seconds")
	}

	if c.Diarization.Enabled && c.Diarization.MaxSpeakers < 2 {
		problems = append(problems, fmt.Sprintf("diarization.max_speakers must be at least 2, got %d", c.Diarization.MaxSpeakers))
	}
	if c.Diarization.PadSeconds < 0 {
		problems = append(problems, "diarization.pad_seconds must be non-negative")
	}

	if c.Notifications.RequestTimeout <= 0 {
		problems = append(problems, "notifications.request_timeout must be positive")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
