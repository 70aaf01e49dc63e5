package diarize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"scribe/internal/merge"
	"scribe/internal/services"
	"scribe/internal/transcribe"
)

const (
	uvxCommand       = "uvx"
	whisperXPackage  = "whisperx"
	whisperXDiarizer = "pyannote/speaker-diarization-3.1"
)

// Primary runs the full external diarization pipeline (whisperx with a
// pyannote backend). It needs a Hugging Face token to pull the gated
// diarization model.
type Primary struct {
	token  string
	model  string
	uvx    string
	device string
	runner Runner
}

// NewPrimary validates the capability. A missing token is an
// initialization failure so selection can fall through to clustering.
func NewPrimary(cfg Config) (*Primary, error) {
	token := strings.TrimSpace(cfg.HFToken)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "diarize", "init primary",
			"pyannote diarization requires a Hugging Face token (set diarization.hf_token)", nil)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = whisperXDiarizer
	}
	uvx := strings.TrimSpace(cfg.UVXBinary)
	if uvx == "" {
		uvx = uvxCommand
	}
	device := strings.TrimSpace(cfg.Device)
	if device == "" {
		device = "cpu"
	}
	return &Primary{token: token, model: model, uvx: uvx, device: device}, nil
}

// WithRunner sets a custom command runner (for testing).
func (p *Primary) WithRunner(runner Runner) *Primary {
	p.runner = runner
	return p
}

// Diarize runs whisperx in diarization mode over the whole source file
// and converts its speaker-labeled segments into intervals. Anchors are
// ignored; the pipeline produces its own alignment.
func (p *Primary) Diarize(ctx context.Context, audioPath string, _ []transcribe.Segment) ([]merge.Interval, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "diarize", "primary", "audio path required", nil)
	}

	outputDir, err := os.MkdirTemp("", "scribe-diarize-*")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "diarize", "primary", "create output directory", err)
	}
	defer os.RemoveAll(outputDir)

	args := []string{
		whisperXPackage,
		audioPath,
		"--diarize",
		"--diarize_model", p.model,
		"--hf_token", p.token,
		"--device", p.device,
		"--output_dir", outputDir,
		"--output_format", "json",
	}
	if p.device == "cpu" {
		args = append(args, "--compute_type", "int8")
	}
	if err := p.run(ctx, p.uvx, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarize", whisperXPackage, "", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	payloadPath := filepath.Join(outputDir, baseName+".json")
	return loadIntervals(payloadPath)
}

func (p *Primary) run(ctx context.Context, name string, args ...string) error {
	if p.runner != nil {
		return p.runner(ctx, name, args...)
	}
	return defaultRun(ctx, name, args...)
}

type diarizedPayload struct {
	Segments []diarizedSegment `json:"segments"`
}

type diarizedSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// loadIntervals converts speaker-labeled segments into coalesced
// intervals with normalized labels (SPEAKER_00 becomes Speaker-1, in
// order of first appearance).
func loadIntervals(path string) ([]merge.Interval, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarize", "read diarization output", "", err)
	}
	var payload diarizedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarize", "parse diarization output", "", err)
	}

	sort.SliceStable(payload.Segments, func(i, j int) bool {
		return payload.Segments[i].Start < payload.Segments[j].Start
	})

	labels := make(map[string]string)
	intervals := make([]merge.Interval, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		raw := strings.TrimSpace(seg.Speaker)
		if raw == "" || seg.End <= seg.Start {
			continue
		}
		label, ok := labels[raw]
		if !ok {
			label = fmt.Sprintf("Speaker-%d", len(labels)+1)
			labels[raw] = label
		}
		if n := len(intervals); n > 0 && intervals[n-1].Speaker == label && seg.Start <= intervals[n-1].End {
			if seg.End > intervals[n-1].End {
				intervals[n-1].End = seg.End
			}
			continue
		}
		intervals = append(intervals, merge.Interval{Start: seg.Start, End: seg.End, Speaker: label})
	}
	return intervals, nil
}
