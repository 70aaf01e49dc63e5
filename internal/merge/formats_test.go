package merge

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/services"
	"scribe/internal/transcribe"
)

func sampleTranscript() *Transcript {
	return &Transcript{
		Segments: []transcribe.Segment{
			{Start: 0, End: 2.5, Text: " Hello and welcome.", Speaker: "Speaker-1"},
			{Start: 3661.5, End: 3665.25, Text: "Wrapping up now.", Speaker: "Speaker-2"},
		},
		FullText: "Hello and welcome. Wrapping up now.",
		Language: "en",
		Stats:    Statistics{TotalChunks: 2, SuccessfulChunks: 2, TotalSegments: 2},
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		sep     byte
		want    string
	}{
		{0, ',', "00:00:00,000"},
		{3661.5, ',', "01:01:01,500"},
		{3661.5, '.', "01:01:01.500"},
		{59.9995, ',', "00:01:00,000"},
		{-1, '.', "00:00:00.000"},
	}
	for _, tc := range cases {
		if got := formatTimestamp(tc.seconds, tc.sep); got != tc.want {
			t.Errorf("formatTimestamp(%v, %q) = %q, want %q", tc.seconds, tc.sep, got, tc.want)
		}
	}
}

func TestRenderText(t *testing.T) {
	got := RenderText(sampleTranscript())
	want := "Speaker-1: Hello and welcome.\nSpeaker-2: Wrapping up now.\n"
	if got != want {
		t.Fatalf("RenderText = %q, want %q", got, want)
	}
}

func TestRenderTextWithoutSpeakers(t *testing.T) {
	transcript := sampleTranscript()
	for i := range transcript.Segments {
		transcript.Segments[i].Speaker = ""
	}
	got := RenderText(transcript)
	if strings.Contains(got, ":") && strings.Contains(got, "Speaker") {
		t.Fatalf("speaker prefix leaked into plain transcript: %q", got)
	}
}

func TestRenderSRT(t *testing.T) {
	got := RenderSRT(sampleTranscript())
	want := "1\n00:00:00,000 --> 00:00:02,500\nSpeaker-1: Hello and welcome.\n\n" +
		"2\n01:01:01,500 --> 01:01:05,250\nSpeaker-2: Wrapping up now.\n\n"
	if got != want {
		t.Fatalf("RenderSRT = %q, want %q", got, want)
	}
}

func TestRenderVTT(t *testing.T) {
	got := RenderVTT(sampleTranscript())
	if !strings.HasPrefix(got, "WEBVTT\n\n") {
		t.Fatalf("missing WEBVTT header: %q", got)
	}
	if !strings.Contains(got, "01:01:01.500 --> 01:01:05.250") {
		t.Fatalf("missing dot-millisecond cue: %q", got)
	}
	if strings.Contains(got, ",500") {
		t.Fatalf("vtt must not use comma millis: %q", got)
	}
}

func TestRenderJSONRoundTrips(t *testing.T) {
	data, err := RenderJSON(sampleTranscript())
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var decoded Transcript
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.FullText != "Hello and welcome. Wrapping up now." {
		t.Fatalf("unexpected full text %q", decoded.FullText)
	}
	if decoded.Stats.TotalChunks != 2 {
		t.Fatalf("statistics lost in serialization: %+v", decoded.Stats)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(sampleTranscript(), "docx")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWriteEmitsOneFilePerFormat(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(sampleTranscript(), dir, "meeting", []string{"txt", "srt", "vtt", "json"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files, got %v", paths)
	}
	for _, path := range paths {
		if filepath.Dir(path) != dir {
			t.Fatalf("file written outside output dir: %s", path)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("missing or empty output %s: %v", path, err)
		}
	}
}
