package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Default returns the baseline configuration. Every field holds a
// working value so a missing config file is not an error.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:     "~/scribe/transcripts",
			WorkDir:       defaultCacheDir("work"),
			LogDir:        "~/.local/share/scribe/logs",
			HistoryDB:     "~/.local/share/scribe/history.db",
			ModelCacheDir: defaultCacheDir("models"),
		},
		Transcription: Transcription{
			Model:         "medium",
			Device:        "cpu",
			ComputeType:   "int8",
			BeamSize:      5,
			Workers:       2,
			Language:      "",
			VADEnabled:    true,
			VADPreset:     "default",
			AudioTrack:    -1,
			OutputFormats: []string{"txt", "json", "srt"},
		},
		Chunking: Chunking{
			TargetSeconds:  600,
			MaxSeconds:     900,
			MinSeconds:     300,
			OverlapSeconds: 2,
		},
		Diarization: Diarization{
			Enabled:        false,
			Model:          "pyannote/speaker-diarization-3.1",
			HFToken:        "",
			MaxSpeakers:    6,
			PadSeconds:     0.25,
			RetainOverlaps: false,
		},
		Notifications: Notifications{
			NtfyTopic:      "",
			RequestTimeout: 10,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			UVX:     "uvx",
		},
	}
}

func defaultCacheDir(leaf string) string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "scribe", leaf)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("~/.cache/scribe", leaf)
	}
	return filepath.Join(home, ".cache", "scribe", leaf)
}
