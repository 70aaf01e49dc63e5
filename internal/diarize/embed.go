package diarize

import "context"

// Window is a padded anchor span on the source timeline.
type Window struct {
	Start float64
	End   float64
}

// Embedder extracts one voice embedding per window from the source
// audio. Implementations must return exactly one embedding per window,
// in order.
type Embedder interface {
	Embed(ctx context.Context, audioPath string, windows []Window) ([][]float64, error)
}
