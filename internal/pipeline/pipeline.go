package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/chunk"
	"scribe/internal/config"
	"scribe/internal/diarize"
	"scribe/internal/extraction"
	"scribe/internal/history"
	"scribe/internal/logging"
	"scribe/internal/media/probe"
	"scribe/internal/merge"
	"scribe/internal/notifications"
	"scribe/internal/scratch"
	"scribe/internal/services"
	"scribe/internal/transcribe"
	"scribe/internal/transcribe/whisper"
	"scribe/internal/vad"
)

// Result is the outcome of one completed run.
type Result struct {
	RunID       string
	Transcript  *merge.Transcript
	OutputPaths []string
	Elapsed     time.Duration
}

// Pipeline executes transcription runs against a fixed configuration.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	notifier notifications.Service

	factory       transcribe.EngineFactory
	probeRunner   probe.Runner
	extractRunner extraction.Runner
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithHistory records finished runs into the given store.
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithNotifier routes run lifecycle notifications through svc.
func WithNotifier(svc notifications.Service) Option {
	return func(p *Pipeline) { p.notifier = svc }
}

// WithEngineFactory overrides the recognition engine source (for testing).
func WithEngineFactory(factory transcribe.EngineFactory) Option {
	return func(p *Pipeline) { p.factory = factory }
}

// WithProbeRunner overrides the ffprobe invocation (for testing).
func WithProbeRunner(runner probe.Runner) Option {
	return func(p *Pipeline) { p.probeRunner = runner }
}

// WithExtractionRunner overrides the ffmpeg invocation (for testing).
func WithExtractionRunner(runner extraction.Runner) Option {
	return func(p *Pipeline) { p.extractRunner = runner }
}

// New builds a pipeline for cfg. Unset options fall back to the real
// external tools and a noop notifier.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "pipeline"),
		notifier: notifications.NewService("", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.factory == nil {
		p.factory = whisper.Factory(whisper.Config{
			Model:       cfg.Transcription.Model,
			Device:      cfg.Transcription.Device,
			ComputeType: cfg.Transcription.ComputeType,
			CacheDir:    cfg.Paths.ModelCacheDir,
			UVX:         cfg.Tools.UVX,
		})
	}
	return p
}

// Run transcribes one source file and returns the assembled transcript
// with the paths of every written output. Chunk-level failures degrade
// the transcript; Run itself fails only when nothing usable remains.
func (p *Pipeline) Run(ctx context.Context, source string) (*Result, error) {
	started := time.Now()

	source, err := config.ExpandPath(source)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "resolve source", "", err)
	}
	if info, statErr := os.Stat(source); statErr != nil || info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "resolve source",
			fmt.Sprintf("%q is not a readable file", source), statErr)
	}
	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "ensure directories", "", err)
	}

	media, err := probe.Inspect(ctx, p.cfg.Tools.FFprobe, source, p.probeRunner)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "pipeline", "probe source", "", err)
	}
	duration := media.DurationSeconds()
	if duration <= 0 {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "probe source",
			"source reports no duration", nil)
	}
	audioIndex := p.cfg.Transcription.AudioTrack
	if audioIndex < 0 {
		audioIndex = media.FirstAudioIndex()
	}
	if audioIndex < 0 {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "probe source",
			"source has no audio stream", nil)
	}

	chunks, err := chunk.Plan(duration, chunk.Options{
		Target:  p.cfg.Chunking.TargetSeconds,
		Max:     p.cfg.Chunking.MaxSeconds,
		Min:     p.cfg.Chunking.MinSeconds,
		Overlap: p.cfg.Chunking.OverlapSeconds,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "plan chunks", "", err)
	}

	workDir, err := scratch.Acquire(p.cfg.Paths.WorkDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := workDir.Release(); releaseErr != nil {
			p.logger.Warn("scratch cleanup failed", logging.Error(releaseErr))
		}
	}()
	runID := workDir.RunID()

	p.logger.Info("run started",
		logging.String("run_id", runID),
		logging.String("source", source),
		logging.Float64("duration_seconds", duration),
		logging.Int("chunks", len(chunks)),
		logging.Int("workers", p.cfg.Transcription.Workers),
	)
	if notifyErr := p.notifier.NotifyRunStarted(ctx, source, len(chunks)); notifyErr != nil {
		p.logger.Warn("start notification failed", logging.Error(notifyErr))
	}

	recognizeOpts, err := p.recognizeOptions()
	if err != nil {
		return nil, err
	}

	extractor := extraction.New(p.cfg.Tools.FFmpeg, audioIndex).WithRunner(p.extractRunner)
	orchestrator := transcribe.NewOrchestrator(p.cfg.Transcription.Workers, p.factory, extractor, p.logger)
	results := orchestrator.Process(ctx, source, chunks, workDir.Path(), recognizeOpts)

	transcript, err := merge.Merge(results, merge.Options{
		Overlap:  p.cfg.Chunking.OverlapSeconds,
		Lookback: merge.DefaultOptions().Lookback,
		MinChars: merge.DefaultOptions().MinChars,
	})
	if err != nil {
		p.finishFailed(ctx, runID, source, duration, started, transcript, err)
		return nil, err
	}

	if p.cfg.Diarization.Enabled {
		diarize.Attribute(ctx, source, transcript, diarize.Config{
			HFToken:        p.cfg.Diarization.HFToken,
			Model:          p.cfg.Diarization.Model,
			MaxSpeakers:    p.cfg.Diarization.MaxSpeakers,
			PadSeconds:     p.cfg.Diarization.PadSeconds,
			FFmpegBinary:   p.cfg.Tools.FFmpeg,
			UVXBinary:      p.cfg.Tools.UVX,
			Device:         p.cfg.Transcription.Device,
			RetainOverlaps: p.cfg.Diarization.RetainOverlaps,
		}, p.logger)
		if transcript.DiarizationError != "" {
			p.logger.Warn("speaker attribution unavailable",
				logging.String("error", transcript.DiarizationError))
		}
	}

	outputs, err := merge.Write(transcript, p.cfg.Paths.OutputDir, sourceStem(source), p.cfg.Transcription.OutputFormats)
	if err != nil {
		p.finishFailed(ctx, runID, source, duration, started, transcript, err)
		return nil, err
	}

	elapsed := time.Since(started)
	p.record(ctx, history.Run{
		RunID:            runID,
		SourcePath:       source,
		Status:           history.StatusCompleted,
		Language:         transcript.Language,
		TotalChunks:      transcript.Stats.TotalChunks,
		FailedChunks:     transcript.Stats.FailedChunks,
		TotalSegments:    transcript.Stats.TotalSegments,
		DedupedSegments:  transcript.Stats.DedupedSegments,
		DurationSeconds:  transcript.Stats.TotalDuration,
		ProcessingSecs:   elapsed.Seconds(),
		SpeedRatio:       transcript.Stats.SpeedRatio,
		OutputPaths:      outputs,
		DiarizationError: transcript.DiarizationError,
		StartedAt:        started,
		FinishedAt:       time.Now(),
	})
	if notifyErr := p.notifier.NotifyRunCompleted(ctx, source, transcript.Stats.FailedChunks, elapsed); notifyErr != nil {
		p.logger.Warn("completion notification failed", logging.Error(notifyErr))
	}

	p.logger.Info("run complete",
		logging.String("run_id", runID),
		logging.Int("segments", transcript.Stats.TotalSegments),
		logging.Int("failed_chunks", transcript.Stats.FailedChunks),
		logging.Duration("elapsed", elapsed),
	)

	return &Result{
		RunID:       runID,
		Transcript:  transcript,
		OutputPaths: outputs,
		Elapsed:     elapsed,
	}, nil
}

// recognizeOptions maps the transcription config onto engine options.
func (p *Pipeline) recognizeOptions() (transcribe.RecognizeOptions, error) {
	opts := transcribe.RecognizeOptions{
		Language: p.cfg.Transcription.Language,
		BeamSize: p.cfg.Transcription.BeamSize,
	}
	if p.cfg.Transcription.VADEnabled {
		params, err := vad.Lookup(p.cfg.Transcription.VADPreset)
		if err != nil {
			return opts, services.Wrap(services.ErrConfiguration, "pipeline", "vad preset", "", err)
		}
		opts.VAD = &params
	}
	return opts, nil
}

// finishFailed records a failed run and notifies. The transcript may be
// nil or carry only chunk diagnostics.
func (p *Pipeline) finishFailed(ctx context.Context, runID, source string, duration float64, started time.Time, transcript *merge.Transcript, cause error) {
	run := history.Run{
		RunID:           runID,
		SourcePath:      source,
		Status:          history.StatusFailed,
		DurationSeconds: duration,
		ProcessingSecs:  time.Since(started).Seconds(),
		Error:           cause.Error(),
		StartedAt:       started,
		FinishedAt:      time.Now(),
	}
	if transcript != nil {
		run.Language = transcript.Language
		run.TotalChunks = transcript.Stats.TotalChunks
		run.FailedChunks = transcript.Stats.FailedChunks
		run.TotalSegments = transcript.Stats.TotalSegments
		run.DedupedSegments = transcript.Stats.DedupedSegments
		run.DiarizationError = transcript.DiarizationError
	}
	p.record(ctx, run)

	if notifyErr := p.notifier.NotifyRunFailed(ctx, source, cause); notifyErr != nil {
		p.logger.Warn("failure notification failed", logging.Error(notifyErr))
	}
	p.logger.Error("run failed",
		logging.String("run_id", runID),
		logging.Error(cause),
	)
}

func (p *Pipeline) record(ctx context.Context, run history.Run) {
	if p.store == nil {
		return
	}
	if _, err := p.store.Record(ctx, run); err != nil {
		p.logger.Warn("history record failed",
			logging.String("run_id", run.RunID),
			logging.Error(err))
	}
}

func sourceStem(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
