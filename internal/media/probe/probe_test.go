package probe

import (
	"context"
	"strings"
	"testing"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "duration": "1799.5", "sample_rate": "48000", "channels": 2},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "duration": "1800.0", "sample_rate": "48000", "channels": 6}
  ],
  "format": {"filename": "meeting.m4a", "duration": "1800.25", "size": "1048576", "format_name": "mov,mp4,m4a"}
}`

func TestInspectParsesOutput(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte(sampleOutput), nil
	}

	result, err := Inspect(context.Background(), "", "meeting.m4a", runner)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if gotName != "ffprobe" {
		t.Fatalf("expected default binary, got %q", gotName)
	}
	if gotArgs[len(gotArgs)-1] != "meeting.m4a" {
		t.Fatalf("expected path as final arg, got %v", gotArgs)
	}
	if !strings.Contains(strings.Join(gotArgs, " "), "-show_streams") {
		t.Fatalf("missing -show_streams in args: %v", gotArgs)
	}

	if result.DurationSeconds() != 1800.25 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1048576 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if len(result.AudioStreams()) != 2 {
		t.Fatalf("expected 2 audio streams, got %d", len(result.AudioStreams()))
	}
	if result.FirstAudioIndex() != 1 {
		t.Fatalf("expected first audio index 1, got %d", result.FirstAudioIndex())
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", " ", nil); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "120.5"},
			{CodecType: "audio", Duration: "130.75"},
		},
	}
	if result.DurationSeconds() != 130.75 {
		t.Fatalf("expected stream fallback 130.75, got %v", result.DurationSeconds())
	}
}

func TestNoAudioStreams(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "video"}}}
	if result.FirstAudioIndex() != -1 {
		t.Fatalf("expected -1 for no audio, got %d", result.FirstAudioIndex())
	}
}
