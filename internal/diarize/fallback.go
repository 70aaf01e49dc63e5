package diarize

import (
	"context"
	"fmt"

	"scribe/internal/merge"
	"scribe/internal/services"
	"scribe/internal/transcribe"
)

// adjacencyGap is the largest silence between same-speaker anchors that
// still coalesces into one interval.
const adjacencyGap = 0.5

// ClusterDiarizer is the fallback capability: it embeds the audio under
// each transcript segment and groups the embeddings by speaker. Unlike
// the primary it cannot run without anchors.
type ClusterDiarizer struct {
	embedder    Embedder
	maxSpeakers int
	pad         float64
}

// NewClusterDiarizer builds the fallback from config. The embedder can
// be swapped with WithEmbedder.
func NewClusterDiarizer(cfg Config) (*ClusterDiarizer, error) {
	maxSpeakers := cfg.MaxSpeakers
	if maxSpeakers < 2 {
		return nil, services.Wrap(services.ErrConfiguration, "diarize", "init fallback",
			fmt.Sprintf("max_speakers must be at least 2, got %d", maxSpeakers), nil)
	}
	pad := cfg.PadSeconds
	if pad < 0 {
		pad = 0
	}
	return &ClusterDiarizer{
		embedder:    NewSpectralEmbedder(cfg.FFmpegBinary),
		maxSpeakers: maxSpeakers,
		pad:         pad,
	}, nil
}

// WithEmbedder sets a custom embedder (for testing).
func (d *ClusterDiarizer) WithEmbedder(embedder Embedder) *ClusterDiarizer {
	d.embedder = embedder
	return d
}

// Diarize embeds one window per anchor, clusters the embeddings, and
// coalesces temporally adjacent same-cluster anchors into intervals.
func (d *ClusterDiarizer) Diarize(ctx context.Context, audioPath string, anchors []transcribe.Segment) ([]merge.Interval, error) {
	if len(anchors) == 0 {
		return nil, services.Wrap(services.ErrValidation, "diarize", "fallback",
			"clustering needs transcript segments as anchors", nil)
	}

	windows := make([]Window, len(anchors))
	for i, anchor := range anchors {
		start := anchor.Start - d.pad
		if start < 0 {
			start = 0
		}
		windows[i] = Window{Start: start, End: anchor.End + d.pad}
	}

	embeddings, err := d.embedder.Embed(ctx, audioPath, windows)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(anchors) {
		return nil, services.Wrap(services.ErrExternalTool, "diarize", "fallback",
			fmt.Sprintf("embedder returned %d embeddings for %d anchors", len(embeddings), len(anchors)), nil)
	}

	labels := chooseClusters(embeddings, d.maxSpeakers)
	return coalesce(anchors, labels), nil
}

// coalesce turns labeled anchors into intervals, merging consecutive
// anchors that share a cluster and sit within the adjacency gap.
func coalesce(anchors []transcribe.Segment, labels []int) []merge.Interval {
	intervals := make([]merge.Interval, 0, len(anchors))
	seen := make(map[int]string)
	for i, anchor := range anchors {
		speaker, ok := seen[labels[i]]
		if !ok {
			speaker = fmt.Sprintf("Speaker-%d", len(seen)+1)
			seen[labels[i]] = speaker
		}
		if n := len(intervals); n > 0 && intervals[n-1].Speaker == speaker &&
			anchor.Start-intervals[n-1].End <= adjacencyGap {
			if anchor.End > intervals[n-1].End {
				intervals[n-1].End = anchor.End
			}
			continue
		}
		intervals = append(intervals, merge.Interval{
			Start:   anchor.Start,
			End:     anchor.End,
			Speaker: speaker,
		})
	}
	return intervals
}
