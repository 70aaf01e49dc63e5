package diarize

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"

	"scribe/internal/services"
)

const (
	embedSampleRate = 16000
	embedFrameLen   = 400 // 25ms at 16kHz
	embedFrameHop   = 160 // 10ms at 16kHz
	embedBands      = 24
)

// SpectralEmbedder derives a coarse voice fingerprint per window from
// band energies of the raw signal. It is far weaker than a neural
// speaker embedding but needs nothing beyond ffmpeg, which the pipeline
// already requires, so the clustering fallback always has a capability.
type SpectralEmbedder struct {
	binary string
	runner Runner
}

// NewSpectralEmbedder creates an embedder extracting windows with the
// given ffmpeg binary.
func NewSpectralEmbedder(binary string) *SpectralEmbedder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &SpectralEmbedder{binary: binary}
}

// WithRunner sets a custom command runner (for testing).
func (e *SpectralEmbedder) WithRunner(runner Runner) *SpectralEmbedder {
	e.runner = runner
	return e
}

// Embed extracts each window to a mono 16kHz PCM file and computes its
// band-energy embedding. Windows are processed sequentially; diarization
// never competes with recognition workers for resources.
func (e *SpectralEmbedder) Embed(ctx context.Context, audioPath string, windows []Window) ([][]float64, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	scratch, err := os.MkdirTemp("", "scribe-embed-*")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "diarize", "embed", "create scratch directory", err)
	}
	defer os.RemoveAll(scratch)

	embeddings := make([][]float64, 0, len(windows))
	for i, window := range windows {
		duration := window.End - window.Start
		if duration <= 0 {
			embeddings = append(embeddings, make([]float64, embedBands))
			continue
		}
		dest := filepath.Join(scratch, fmt.Sprintf("window_%04d.wav", i))
		args := []string{
			"-y",
			"-hide_banner",
			"-loglevel", "error",
			"-ss", fmt.Sprintf("%.3f", window.Start),
			"-t", fmt.Sprintf("%.3f", duration),
			"-i", audioPath,
			"-vn",
			"-sn",
			"-dn",
			"-ac", "1",
			"-ar", fmt.Sprintf("%d", embedSampleRate),
			"-c:a", "pcm_s16le",
			dest,
		}
		if err := e.run(ctx, e.binary, args...); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "diarize", "extract embedding window", "", err)
		}
		samples, err := decodeSamples(dest)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, embedSamples(samples))
	}
	return embeddings, nil
}

func (e *SpectralEmbedder) run(ctx context.Context, name string, args ...string) error {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	return defaultRun(ctx, name, args...)
}

func decodeSamples(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarize", "open embedding window", "", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarize", "decode embedding window", "", err)
	}
	scale := math.Pow(2, float64(buf.SourceBitDepth)-1)
	if scale == 0 {
		scale = 1 << 15
	}
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}
	return samples, nil
}

// embedSamples summarizes the signal as mean log energy per frequency
// band, computed frame by frame with a Hamming window and normalized to
// zero mean, unit norm.
func embedSamples(samples []float64) []float64 {
	embedding := make([]float64, embedBands)
	if len(samples) < embedFrameLen {
		return embedding
	}

	window := hammingWindow(embedFrameLen)
	frames := 0
	for offset := 0; offset+embedFrameLen <= len(samples); offset += embedFrameHop {
		frame := make([]float64, embedFrameLen)
		for i := range frame {
			frame[i] = samples[offset+i] * window[i]
		}
		for band := 0; band < embedBands; band++ {
			embedding[band] += bandPower(frame, band)
		}
		frames++
	}
	if frames == 0 {
		return embedding
	}

	var mean float64
	for band := range embedding {
		embedding[band] = math.Log(embedding[band]/float64(frames) + 1e-10)
		mean += embedding[band]
	}
	mean /= float64(embedBands)

	var norm float64
	for band := range embedding {
		embedding[band] -= mean
		norm += embedding[band] * embedding[band]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for band := range embedding {
			embedding[band] /= norm
		}
	}
	return embedding
}

// hammingWindow returns the standard Hamming window of length n.
func hammingWindow(n int) []float64 {
	window := make([]float64, n)
	for i := range window {
		window[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return window
}

// bandPower evaluates the spectral power at one mel-spaced frequency
// via a single-bin DFT (Goertzel-style direct evaluation).
func bandPower(frame []float64, band int) float64 {
	freq := bandFrequency(band)
	omega := 2 * math.Pi * freq / float64(embedSampleRate)
	var re, im float64
	for i, sample := range frame {
		angle := omega * float64(i)
		re += sample * math.Cos(angle)
		im -= sample * math.Sin(angle)
	}
	return re*re + im*im
}

// bandFrequency spaces band centers on the mel scale between 80Hz and
// 4kHz, the range carrying most speaker-discriminative energy at 16kHz.
func bandFrequency(band int) float64 {
	const low, high = 80.0, 4000.0
	melLow := 2595 * math.Log10(1+low/700)
	melHigh := 2595 * math.Log10(1+high/700)
	mel := melLow + (melHigh-melLow)*float64(band)/float64(embedBands-1)
	return 700 * (math.Pow(10, mel/2595) - 1)
}
