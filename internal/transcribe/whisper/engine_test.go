package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/services"
	"scribe/internal/transcribe"
	"scribe/internal/vad"
)

const transcriptJSON = `{
  "language": "en",
  "language_probability": 0.97,
  "duration": 12.5,
  "segments": [
    {"start": 0.0, "end": 4.2, "text": " Good morning everyone.",
     "words": [{"word": "Good", "start": 0.0, "end": 0.4, "probability": 0.99}]},
    {"start": 4.2, "end": 9.1, "text": " Let's get started.", "words": []}
  ]
}`

func TestRecognizeBuildsArgsAndParsesOutput(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "meeting_chunk_000.wav")

	var gotName string
	var gotArgs []string
	engine := New(Config{Model: "large-v3", Device: "cpu", ComputeType: "int8", CacheDir: "/models"}).
		WithRunner(func(ctx context.Context, name string, args ...string) error {
			gotName = name
			gotArgs = args
			// Simulate the CLI writing its transcript beside the artifact.
			return os.WriteFile(filepath.Join(dir, "meeting_chunk_000.json"), []byte(transcriptJSON), 0o644)
		})

	params, err := vad.Lookup(vad.PresetMeeting)
	if err != nil {
		t.Fatalf("vad.Lookup: %v", err)
	}
	recognition, err := engine.Recognize(context.Background(), artifact, transcribe.RecognizeOptions{
		Language: "zh",
		BeamSize: 7,
		VAD:      &params,
	})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	if gotName != UVXCommand {
		t.Fatalf("expected %s, got %q", UVXCommand, gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{
		CLIName,
		"--model large-v3",
		"--beam_size 7",
		"--language zh",
		"--vad_filter True",
		"--vad_threshold 0.50",
		"--vad_min_speech_duration_ms 250",
		"--model_dir /models",
		"--output_format json",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %v", want, gotArgs)
		}
	}

	if len(recognition.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(recognition.Segments))
	}
	if recognition.Language != "en" || recognition.LanguageConfidence != 0.97 {
		t.Fatalf("unexpected language detection: %+v", recognition)
	}
	if recognition.SourceDuration != 12.5 {
		t.Fatalf("unexpected duration %v", recognition.SourceDuration)
	}
	word := recognition.Segments[0].Words[0]
	if word.Text != "Good" || word.Confidence != 0.99 {
		t.Fatalf("unexpected word %+v", word)
	}
}

func TestRecognizeOmitsOptionalArgs(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "a.wav")
	var gotArgs []string
	engine := New(Config{}).WithRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"language":"en","segments":[]}`), 0o644)
	})

	if _, err := engine.Recognize(context.Background(), artifact, transcribe.RecognizeOptions{}); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if strings.Contains(joined, "--language") {
		t.Fatalf("language hint should be omitted when empty: %v", gotArgs)
	}
	if strings.Contains(joined, "--vad_filter") {
		t.Fatalf("vad flags should be omitted when disabled: %v", gotArgs)
	}
	if !strings.Contains(joined, "--model medium") {
		t.Fatalf("default model missing: %v", gotArgs)
	}
}

func TestRecognizeHonorsConfiguredUVX(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "a.wav")
	var gotName string
	engine := New(Config{UVX: "/opt/uv/bin/uvx"}).
		WithRunner(func(ctx context.Context, name string, args ...string) error {
			gotName = name
			return os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"language":"en","segments":[]}`), 0o644)
		})

	if _, err := engine.Recognize(context.Background(), artifact, transcribe.RecognizeOptions{}); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if gotName != "/opt/uv/bin/uvx" {
		t.Fatalf("configured binary ignored, got %q", gotName)
	}
}

func TestRecognizeWrapsCLIFailure(t *testing.T) {
	engine := New(Config{}).WithRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 2")
	})
	_, err := engine.Recognize(context.Background(), "/tmp/x.wav", transcribe.RecognizeOptions{})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestRecognizeRejectsEmptyArtifact(t *testing.T) {
	engine := New(Config{})
	if _, err := engine.Recognize(context.Background(), "  ", transcribe.RecognizeOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadRecognitionFallsBackToSegmentEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.json")
	body := `{"language":"en","segments":[{"start":0,"end":3.25,"text":"hi"}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	recognition, err := loadRecognition(path)
	if err != nil {
		t.Fatalf("loadRecognition: %v", err)
	}
	if recognition.SourceDuration != 3.25 {
		t.Fatalf("expected fallback duration 3.25, got %v", recognition.SourceDuration)
	}
}

func TestFactoryProducesIndependentEngines(t *testing.T) {
	factory := Factory(Config{Model: "small"})
	a, err := factory()
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	b, err := factory()
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if a == b {
		t.Fatalf("factory must return distinct instances")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
