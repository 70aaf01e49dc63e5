package config

import "strings"

// normalize trims, lowercases, and expands values so validation and
// consumers see canonical forms.
func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return err
	}
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}
	if c.Paths.HistoryDB, err = expandPath(strings.TrimSpace(c.Paths.HistoryDB)); err != nil {
		return err
	}
	if c.Paths.ModelCacheDir, err = expandPath(strings.TrimSpace(c.Paths.ModelCacheDir)); err != nil {
		return err
	}

	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	c.Transcription.Device = strings.ToLower(strings.TrimSpace(c.Transcription.Device))
	c.Transcription.ComputeType = strings.ToLower(strings.TrimSpace(c.Transcription.ComputeType))
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	c.Transcription.VADPreset = strings.ToLower(strings.TrimSpace(c.Transcription.VADPreset))

	formats := make([]string, 0, len(c.Transcription.OutputFormats))
	seen := map[string]bool{}
	for _, format := range c.Transcription.OutputFormats {
		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" || seen[format] {
			continue
		}
		seen[format] = true
		formats = append(formats, format)
	}
	if len(formats) == 0 {
		formats = []string{"txt"}
	}
	c.Transcription.OutputFormats = formats

	c.Diarization.HFToken = strings.TrimSpace(c.Diarization.HFToken)
	c.Diarization.Model = strings.TrimSpace(c.Diarization.Model)
	if c.Diarization.Model == "" {
		c.Diarization.Model = "pyannote/speaker-diarization-3.1"
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.UVX = strings.TrimSpace(c.Tools.UVX)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = "ffprobe"
	}
	if c.Tools.UVX == "" {
		c.Tools.UVX = "uvx"
	}

	return nil
}
