package transcribe

import (
	"context"

	"scribe/internal/vad"
)

// Word is a single recognized word with timing and confidence.
type Word struct {
	Text       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Segment is a contiguous span of recognized speech. Recognition produces
// chunk-local times; the merger rebases them onto the global timeline.
// Speaker is filled in after merge when diarization runs.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Words   []Word  `json:"words,omitempty"`
	Speaker string  `json:"speaker,omitempty"`
}

// Recognition is the normalized output of one engine invocation.
type Recognition struct {
	Segments           []Segment
	Language           string
	LanguageConfidence float64
	SourceDuration     float64
}

// RecognizeOptions carries the caller-supplied tuning for an invocation.
type RecognizeOptions struct {
	// Language is an ISO 639-1 hint; empty means engine auto-detect.
	Language string
	// BeamSize is the beam-search width.
	BeamSize int
	// VAD enables the engine's voice-activity filter when non-nil.
	VAD *vad.Parameters
}

// Engine is the external recognition capability. Implementations are
// owned by exactly one worker and never shared.
type Engine interface {
	Recognize(ctx context.Context, artifactPath string, opts RecognizeOptions) (Recognition, error)
	Close() error
}

// EngineFactory constructs a fresh engine instance for a worker. It is
// invoked lazily on the worker's first claimed chunk.
type EngineFactory func() (Engine, error)
