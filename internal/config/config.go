package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	OutputDir     string `toml:"output_dir"`
	WorkDir       string `toml:"work_dir"`
	LogDir        string `toml:"log_dir"`
	HistoryDB     string `toml:"history_db"`
	ModelCacheDir string `toml:"model_cache_dir"`
}

// Transcription contains recognition engine and run settings.
type Transcription struct {
	Model         string   `toml:"model"`
	Device        string   `toml:"device"`
	ComputeType   string   `toml:"compute_type"`
	BeamSize      int      `toml:"beam_size"`
	Workers       int      `toml:"workers"`
	Language      string   `toml:"language"`
	VADEnabled    bool     `toml:"vad_enabled"`
	VADPreset     string   `toml:"vad_preset"`
	AudioTrack    int      `toml:"audio_track"`
	OutputFormats []string `toml:"output_formats"`
}

// Chunking contains segmentation planner settings, all in seconds.
type Chunking struct {
	TargetSeconds  float64 `toml:"target_seconds"`
	MaxSeconds     float64 `toml:"max_seconds"`
	MinSeconds     float64 `toml:"min_seconds"`
	OverlapSeconds float64 `toml:"overlap_seconds"`
}

// Diarization contains speaker attribution settings.
type Diarization struct {
	Enabled        bool    `toml:"enabled"`
	Model          string  `toml:"model"`
	HFToken        string  `toml:"hf_token"`
	MaxSpeakers    int     `toml:"max_speakers"`
	PadSeconds     float64 `toml:"pad_seconds"`
	RetainOverlaps bool    `toml:"retain_overlaps"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	UVX     string `toml:"uvx"`
}

// Config encapsulates all configuration values.
//
// Configuration sections by subsystem:
//   - Paths: output, scratch, log, and history locations
//   - Transcription: recognition model, workers, language, VAD, formats
//   - Chunking: segmentation planner durations and overlap
//   - Diarization: speaker attribution capability settings
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//   - Tools: external binary names or paths
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Chunking      Chunking      `toml:"chunking"`
	Diarization   Diarization   `toml:"diarization"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Tools         Tools         `toml:"tools"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The
// returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("scribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.OutputDir,
		c.Paths.WorkDir,
		c.Paths.LogDir,
		c.Paths.ModelCacheDir,
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
