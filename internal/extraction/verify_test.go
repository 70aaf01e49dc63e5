package extraction

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWAV(t *testing.T, path string, sampleRate, channels, bitDepth int) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, 160*channels),
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestVerifyArtifactAcceptsContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunk.wav")
	writeWAV(t, path, ArtifactSampleRate, ArtifactChannels, ArtifactBitDepth)
	if err := VerifyArtifact(path); err != nil {
		t.Fatalf("VerifyArtifact: %v", err)
	}
}

func TestVerifyArtifactRejectsWrongShape(t *testing.T) {
	cases := []struct {
		name       string
		sampleRate int
		channels   int
		bitDepth   int
		wantSubstr string
	}{
		{"wrong rate", 44100, 1, 16, "sample rate"},
		{"stereo", 16000, 2, 16, "channels"},
		{"wrong depth", 16000, 1, 24, "bit depth"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "chunk.wav")
			writeWAV(t, path, tc.sampleRate, tc.channels, tc.bitDepth)
			err := VerifyArtifact(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Fatalf("expected %q error, got %v", tc.wantSubstr, err)
			}
		})
	}
}

func TestVerifyArtifactRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := VerifyArtifact(path); err == nil {
		t.Fatalf("expected error for invalid wav")
	}
}
