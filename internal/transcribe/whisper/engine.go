package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"scribe/internal/language"
	"scribe/internal/services"
	"scribe/internal/transcribe"
)

// Runner executes the recognition command. Tests inject a fake.
type Runner func(ctx context.Context, name string, args ...string) error

// Engine invokes the faster-whisper CLI for one worker.
type Engine struct {
	cfg    Config
	runner Runner
}

// New creates an engine with the given configuration. The returned
// instance must be owned by a single worker.
func New(cfg Config) *Engine {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}
	if cfg.ComputeType == "" {
		cfg.ComputeType = DefaultComputeType
	}
	if cfg.UVX == "" {
		cfg.UVX = UVXCommand
	}
	return &Engine{cfg: cfg}
}

// WithRunner sets a custom command runner (for testing).
func (e *Engine) WithRunner(runner Runner) *Engine {
	e.runner = runner
	return e
}

// Factory returns an EngineFactory producing independent instances, one
// per pool worker.
func Factory(cfg Config) transcribe.EngineFactory {
	return func() (transcribe.Engine, error) {
		return New(cfg), nil
	}
}

// Close releases the engine. The CLI holds no persistent handles; the
// model cache on disk is intentionally kept warm across runs.
func (e *Engine) Close() error {
	return nil
}

// Recognize transcribes the artifact and returns chunk-local segments.
func (e *Engine) Recognize(ctx context.Context, artifactPath string, opts transcribe.RecognizeOptions) (transcribe.Recognition, error) {
	var result transcribe.Recognition

	if strings.TrimSpace(artifactPath) == "" {
		return result, services.Wrap(services.ErrValidation, "whisper", "recognize", "artifact path required", nil)
	}

	outputDir := filepath.Dir(artifactPath)
	args := e.buildArgs(artifactPath, outputDir, opts)
	if err := e.run(ctx, e.cfg.UVX, args...); err != nil {
		return result, services.Wrap(services.ErrExternalTool, "whisper", CLIName, "", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(artifactPath), filepath.Ext(artifactPath))
	payloadPath := filepath.Join(outputDir, baseName+".json")
	return loadRecognition(payloadPath)
}

func (e *Engine) buildArgs(artifactPath, outputDir string, opts transcribe.RecognizeOptions) []string {
	args := make([]string, 0, 32)
	args = append(args,
		CLIName,
		artifactPath,
		"--model", e.cfg.Model,
		"--device", e.cfg.Device,
		"--compute_type", e.cfg.ComputeType,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--word_timestamps", "True",
		"--verbose", "False",
	)

	beam := opts.BeamSize
	if beam <= 0 {
		beam = DefaultBeamSize
	}
	args = append(args, "--beam_size", strconv.Itoa(beam))

	if lang := language.ToISO2(opts.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if opts.VAD != nil {
		args = append(args,
			"--vad_filter", "True",
			"--vad_threshold", strconv.FormatFloat(opts.VAD.Threshold, 'f', 2, 64),
			"--vad_min_speech_duration_ms", strconv.Itoa(opts.VAD.MinSpeechMs),
			"--vad_min_silence_duration_ms", strconv.Itoa(opts.VAD.MinSilenceMs),
			"--vad_speech_pad_ms", strconv.Itoa(opts.VAD.SpeechPadMs),
		)
	}

	if e.cfg.CacheDir != "" {
		args = append(args, "--model_dir", e.cfg.CacheDir)
	}

	return args
}

func (e *Engine) run(ctx context.Context, name string, args ...string) error {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// payload mirrors the CLI's JSON transcript shape.
type payload struct {
	Language            string           `json:"language"`
	LanguageProbability float64          `json:"language_probability"`
	Duration            float64          `json:"duration"`
	Segments            []payloadSegment `json:"segments"`
}

type payloadSegment struct {
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Text  string        `json:"text"`
	Words []payloadWord `json:"words"`
}

type payloadWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

func loadRecognition(path string) (transcribe.Recognition, error) {
	var result transcribe.Recognition

	data, err := os.ReadFile(path)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "whisper", "read transcript", "", err)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return result, services.Wrap(services.ErrExternalTool, "whisper", "parse transcript", "", err)
	}

	segments := make([]transcribe.Segment, 0, len(p.Segments))
	for _, seg := range p.Segments {
		words := make([]transcribe.Word, 0, len(seg.Words))
		for _, w := range seg.Words {
			words = append(words, transcribe.Word{
				Text:       w.Word,
				Start:      w.Start,
				End:        w.End,
				Confidence: w.Probability,
			})
		}
		segments = append(segments, transcribe.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
			Words: words,
		})
	}

	duration := p.Duration
	if duration == 0 && len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	result = transcribe.Recognition{
		Segments:           segments,
		Language:           p.Language,
		LanguageConfidence: p.LanguageProbability,
		SourceDuration:     duration,
	}
	return result, nil
}
