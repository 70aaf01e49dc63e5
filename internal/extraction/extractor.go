package extraction

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"scribe/internal/chunk"
	"scribe/internal/services"
)

// FFmpegCommand is the default extraction binary.
const FFmpegCommand = "ffmpeg"

// Runner executes the extraction binary. Tests inject a fake to avoid ffmpeg.
type Runner func(ctx context.Context, name string, args ...string) error

// Extractor turns chunk windows into mono 16kHz WAV artifacts.
type Extractor struct {
	binary     string
	audioIndex int
	runner     Runner
}

// New creates an extractor for the given audio stream index of the source.
// An empty binary falls back to the ffmpeg on PATH.
func New(binary string, audioIndex int) *Extractor {
	if strings.TrimSpace(binary) == "" {
		binary = FFmpegCommand
	}
	return &Extractor{binary: binary, audioIndex: audioIndex}
}

// WithRunner sets a custom command runner (for testing).
func (e *Extractor) WithRunner(runner Runner) *Extractor {
	e.runner = runner
	return e
}

// Extract writes the chunk window of source into destDir and returns the
// artifact path. The artifact covers exactly [c.Start, c.End) as mono
// 16kHz s16le PCM.
func (e *Extractor) Extract(ctx context.Context, source string, c chunk.Chunk, destDir string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", services.Wrap(services.ErrValidation, "extraction", "extract", "source path required", nil)
	}
	if c.Duration() <= 0 {
		return "", services.Wrap(services.ErrValidation, "extraction", "extract",
			fmt.Sprintf("chunk %d has nonpositive duration", c.ID), nil)
	}

	dest := filepath.Join(destDir, ArtifactName(source, c.ID))
	args := buildExtractArgs(source, e.audioIndex, c.Start, c.Duration(), dest)

	if err := e.run(ctx, e.binary, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", "ffmpeg",
			fmt.Sprintf("chunk %d", c.ID), err)
	}
	// ffmpeg exiting zero does not guarantee a usable artifact; a broken
	// one surfaces here instead of as an opaque recognition failure.
	if err := VerifyArtifact(dest); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", "verify artifact",
			fmt.Sprintf("chunk %d", c.ID), err)
	}
	return dest, nil
}

// ArtifactName returns the deterministic artifact filename for a chunk of
// the given source.
func ArtifactName(source string, chunkID int) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return fmt.Sprintf("%s_chunk_%03d.wav", stem, chunkID)
}

func buildExtractArgs(source string, audioIndex int, startSec, durationSec float64, dest string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(startSec),
		"-t", formatSeconds(durationSec),
		"-i", source,
	}
	if audioIndex >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:%d", audioIndex))
	}
	args = append(args,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	)
	return args
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func (e *Extractor) run(ctx context.Context, name string, args ...string) error {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
