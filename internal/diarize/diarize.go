package diarize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"scribe/internal/logging"
	"scribe/internal/merge"
	"scribe/internal/transcribe"
)

// SpeakerUnknown labels segments with no positive overlap against any
// speaker interval.
const SpeakerUnknown = "Speaker-Unknown"

// Diarizer produces speaker intervals on the global timeline. Anchors
// are the already-merged transcript segments; the clustering fallback
// cannot work without them, the primary ignores them.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string, anchors []transcribe.Segment) ([]merge.Interval, error)
}

// Config selects and tunes the diarization capability.
type Config struct {
	// HFToken gates the primary pyannote pipeline. Empty means the
	// primary is unavailable and selection falls through to clustering.
	HFToken string
	// Model is the diarization model identifier handed to the primary
	// pipeline. Empty uses the pyannote default.
	Model string
	// MaxSpeakers bounds the cluster count explored by the fallback.
	MaxSpeakers int
	// PadSeconds widens each anchor's embedding window on both sides.
	PadSeconds float64
	// FFmpegBinary extracts embedding windows for the fallback.
	FFmpegBinary string
	// UVXBinary resolves the primary pipeline's CLI. Empty uses uvx
	// from PATH.
	UVXBinary string
	// Device passes through to the primary pipeline ("cpu" or "cuda").
	Device string
	// RetainOverlaps keeps overlapping speaker intervals as produced
	// instead of resolving them into a disjoint timeline.
	RetainOverlaps bool
}

// DefaultConfig returns fallback-friendly defaults.
func DefaultConfig() Config {
	return Config{
		Model:        whisperXDiarizer,
		MaxSpeakers:  6,
		PadSeconds:   0.25,
		FFmpegBinary: "ffmpeg",
		UVXBinary:    uvxCommand,
		Device:       "cpu",
	}
}

// Select picks the best available diarizer: primary first, clustering
// fallback when the primary cannot initialize. The returned error is
// non-nil only when no capability is usable; callers surface it on the
// transcript and continue.
func Select(cfg Config, logger *slog.Logger) (Diarizer, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	primary, primaryErr := NewPrimary(cfg)
	if primaryErr == nil {
		return primary, nil
	}
	logger.Info("primary diarization unavailable, trying clustering fallback",
		logging.Error(primaryErr))

	fallback, fallbackErr := NewClusterDiarizer(cfg)
	if fallbackErr == nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("no diarization capability: primary: %v; fallback: %v", primaryErr, fallbackErr)
}

// Attribute runs the full attribution pass against a merged transcript:
// select a capability, diarize, resolve interval overlaps, assign one
// speaker per segment, and summarize. Every failure is recorded on the
// transcript instead of propagating; the transcript is always delivered.
func Attribute(ctx context.Context, audioPath string, transcript *merge.Transcript, cfg Config, logger *slog.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}
	diarizer, err := Select(cfg, logger)
	if err != nil {
		transcript.DiarizationError = err.Error()
		return
	}

	intervals, err := diarizer.Diarize(ctx, audioPath, transcript.Segments)
	if err != nil {
		logger.Warn("diarization failed, delivering transcript without speakers",
			logging.Error(err))
		transcript.DiarizationError = err.Error()
		return
	}

	Apply(transcript, intervals, cfg.RetainOverlaps)
}

// Apply attaches speaker intervals to the transcript: segments get
// their labels in place, and interval plus per-speaker summary fields
// are filled. Intervals are reduced to a disjoint timeline first unless
// retainOverlaps asks for them as produced.
func Apply(transcript *merge.Transcript, intervals []merge.Interval, retainOverlaps bool) {
	attached := intervals
	if !retainOverlaps {
		attached = ResolveOverlaps(intervals)
	}
	Assign(transcript.Segments, attached)
	transcript.SpeakerIntervals = attached
	transcript.Speakers = Summarize(attached, transcript.Segments)
}

// Summarize aggregates speech time per speaker from intervals and
// segment counts from the assigned transcript, sorted by speech time
// descending for stable presentation.
func Summarize(intervals []merge.Interval, segments []transcribe.Segment) []merge.SpeakerSummary {
	speech := make(map[string]float64)
	for _, iv := range intervals {
		if iv.End > iv.Start {
			speech[iv.Speaker] += iv.End - iv.Start
		}
	}
	counts := make(map[string]int)
	for _, seg := range segments {
		if seg.Speaker != "" {
			counts[seg.Speaker]++
		}
	}

	labels := make(map[string]bool)
	for label := range speech {
		labels[label] = true
	}
	for label := range counts {
		labels[label] = true
	}

	summaries := make([]merge.SpeakerSummary, 0, len(labels))
	for label := range labels {
		summaries = append(summaries, merge.SpeakerSummary{
			Speaker:    label,
			Segments:   counts[label],
			SpeechTime: speech[label],
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].SpeechTime != summaries[j].SpeechTime {
			return summaries[i].SpeechTime > summaries[j].SpeechTime
		}
		return summaries[i].Speaker < summaries[j].Speaker
	})
	return summaries
}
