package diarize

import (
	"context"
	"errors"
	"testing"

	"scribe/internal/services"
	"scribe/internal/transcribe"
)

type fakeEmbedder struct {
	embeddings [][]float64
	windows    []Window
	err        error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string, windows []Window) ([][]float64, error) {
	f.windows = windows
	if f.err != nil {
		return nil, f.err
	}
	return f.embeddings, nil
}

func clusterUnderTest(t *testing.T, embedder Embedder) *ClusterDiarizer {
	t.Helper()
	d, err := NewClusterDiarizer(Config{MaxSpeakers: 4, PadSeconds: 0.25})
	if err != nil {
		t.Fatalf("NewClusterDiarizer: %v", err)
	}
	return d.WithEmbedder(embedder)
}

func TestClusterDiarizerGroupsAnchors(t *testing.T) {
	anchors := []transcribe.Segment{
		{Start: 0, End: 2},
		{Start: 2.1, End: 4},
		{Start: 10, End: 12},
		{Start: 12.3, End: 14},
	}
	embedder := &fakeEmbedder{embeddings: [][]float64{
		{1, 0.02, 0}, {0.98, 0, 0.03},
		{0, 1, 0.02}, {0.02, 0.97, 0},
	}}

	intervals, err := clusterUnderTest(t, embedder).Diarize(context.Background(), "a.wav", anchors)
	if err != nil {
		t.Fatalf("Diarize: %v", err)
	}

	// Adjacent same-cluster anchors coalesce (gaps 0.1 and 0.3 are
	// within the 0.5s adjacency gap).
	if len(intervals) != 2 {
		t.Fatalf("expected 2 coalesced intervals, got %+v", intervals)
	}
	if intervals[0].Start != 0 || intervals[0].End != 4 || intervals[0].Speaker != "Speaker-1" {
		t.Fatalf("unexpected first interval: %+v", intervals[0])
	}
	if intervals[1].Start != 10 || intervals[1].End != 14 || intervals[1].Speaker != "Speaker-2" {
		t.Fatalf("unexpected second interval: %+v", intervals[1])
	}
}

func TestClusterDiarizerPadsWindows(t *testing.T) {
	embedder := &fakeEmbedder{embeddings: [][]float64{{1, 0}, {0, 1}}}
	anchors := []transcribe.Segment{{Start: 0.1, End: 2}, {Start: 30, End: 32}}

	if _, err := clusterUnderTest(t, embedder).Diarize(context.Background(), "a.wav", anchors); err != nil {
		t.Fatalf("Diarize: %v", err)
	}

	if embedder.windows[0].Start != 0 {
		t.Fatalf("pad must clamp at zero, got %v", embedder.windows[0].Start)
	}
	if embedder.windows[1].Start != 29.75 || embedder.windows[1].End != 32.25 {
		t.Fatalf("unexpected padded window: %+v", embedder.windows[1])
	}
}

func TestClusterDiarizerFarApartSameSpeakerSplits(t *testing.T) {
	// Same cluster but far apart in time: two intervals with one label.
	embedder := &fakeEmbedder{embeddings: [][]float64{{1, 0.01}, {0.99, 0}, {0, 1}}}
	anchors := []transcribe.Segment{
		{Start: 0, End: 2},
		{Start: 50, End: 52},
		{Start: 60, End: 62},
	}

	intervals, err := clusterUnderTest(t, embedder).Diarize(context.Background(), "a.wav", anchors)
	if err != nil {
		t.Fatalf("Diarize: %v", err)
	}
	if len(intervals) != 3 {
		t.Fatalf("expected 3 intervals, got %+v", intervals)
	}
	if intervals[0].Speaker != intervals[1].Speaker {
		t.Fatalf("same cluster must keep one label: %+v", intervals)
	}
}

func TestClusterDiarizerRequiresAnchors(t *testing.T) {
	d := clusterUnderTest(t, &fakeEmbedder{})
	if _, err := d.Diarize(context.Background(), "a.wav", nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error without anchors, got %v", err)
	}
}

func TestClusterDiarizerEmbeddingCountMismatch(t *testing.T) {
	embedder := &fakeEmbedder{embeddings: [][]float64{{1, 0}}}
	anchors := []transcribe.Segment{{Start: 0, End: 2}, {Start: 3, End: 5}}
	d := clusterUnderTest(t, embedder)
	if _, err := d.Diarize(context.Background(), "a.wav", anchors); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error on mismatch, got %v", err)
	}
}

func TestNewClusterDiarizerValidatesMaxSpeakers(t *testing.T) {
	if _, err := NewClusterDiarizer(Config{MaxSpeakers: 1}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
