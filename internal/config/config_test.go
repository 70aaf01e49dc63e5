package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if cfg.Transcription.Model != "medium" || cfg.Transcription.Workers != 2 {
		t.Fatalf("defaults not applied: %+v", cfg.Transcription)
	}
	if cfg.Chunking.TargetSeconds != 600 || cfg.Chunking.OverlapSeconds != 2 {
		t.Fatalf("chunking defaults not applied: %+v", cfg.Chunking)
	}
	if cfg.Diarization.Model != "pyannote/speaker-diarization-3.1" || cfg.Diarization.RetainOverlaps {
		t.Fatalf("diarization defaults not applied: %+v", cfg.Diarization)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("paths must be expanded: %q", cfg.Paths.OutputDir)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[transcription]
model = "large-v3"
device = "CUDA"
workers = 4
output_formats = ["TXT", "srt", "txt"]

[chunking]
target_seconds = 300.0
max_seconds = 450.0
min_seconds = 120.0
overlap_seconds = 1.5

[diarization]
enabled = true
hf_token = "  hf_abc  "
model = "  pyannote/segmentation-3.0 "
retain_overlaps = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config, got exists=%v path=%q", exists, resolved)
	}
	if cfg.Transcription.Device != "cuda" {
		t.Fatalf("device not lowercased: %q", cfg.Transcription.Device)
	}
	if len(cfg.Transcription.OutputFormats) != 2 {
		t.Fatalf("formats not deduped: %v", cfg.Transcription.OutputFormats)
	}
	if cfg.Diarization.HFToken != "hf_abc" {
		t.Fatalf("token not trimmed: %q", cfg.Diarization.HFToken)
	}
	if cfg.Diarization.Model != "pyannote/segmentation-3.0" {
		t.Fatalf("model not trimmed: %q", cfg.Diarization.Model)
	}
	if !cfg.Diarization.RetainOverlaps {
		t.Fatal("retain_overlaps override lost")
	}
	// Untouched sections keep defaults.
	if cfg.Logging.Level != "info" {
		t.Fatalf("defaults lost on partial override: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "bad overlap",
			body: "[chunking]\noverlap_seconds = 400.0\n",
			want: "overlap_seconds",
		},
		{
			name: "bad device",
			body: "[transcription]\ndevice = \"tpu\"\n",
			want: "device",
		},
		{
			name: "bad format",
			body: "[transcription]\noutput_formats = [\"docx\"]\n",
			want: "output_formats",
		},
		{
			name: "bad vad preset",
			body: "[transcription]\nvad_preset = \"studio\"\n",
			want: "preset",
		},
		{
			name: "bad max speakers",
			body: "[diarization]\nenabled = true\nmax_speakers = 1\n",
			want: "max_speakers",
		},
		{
			name: "zero workers",
			body: "[transcription]\nworkers = 0\n",
			want: "workers",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample config must load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("sample file missing")
	}
	if cfg.Transcription.Model != "medium" {
		t.Fatalf("sample should match defaults: %+v", cfg.Transcription)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ModelCacheDir = filepath.Join(base, "models")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.WorkDir, cfg.Paths.LogDir, cfg.Paths.ModelCacheDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("directory %s missing: %v", dir, err)
		}
	}
}
