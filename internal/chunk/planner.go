package chunk

import (
	"errors"
	"fmt"
)

// ErrInvalidDuration reports a nonpositive total duration passed to Plan.
var ErrInvalidDuration = errors.New("chunk: total duration must be positive")

// Chunk is one bounded time window of the source recording scheduled for
// independent recognition. Times are seconds from the start of the source.
type Chunk struct {
	ID           int
	Start        float64
	End          float64
	OverlapsPrev bool
	OverlapsNext bool
}

// Duration returns the chunk length in seconds.
func (c Chunk) Duration() float64 {
	return c.End - c.Start
}

// Options controls chunk sizing. All values are seconds.
type Options struct {
	// Target is the ideal chunk length.
	Target float64
	// Max is the upper bound a chunk may grow to when absorbing a short tail.
	Max float64
	// Min is the shortest acceptable trailing chunk; a smaller remainder is
	// folded into the previous chunk instead.
	Min float64
	// Overlap is the shared window between consecutive chunks.
	Overlap float64
}

// DefaultOptions mirrors the sizing used for typical meeting recordings:
// ten-minute targets with a two-second overlap.
func DefaultOptions() Options {
	return Options{Target: 600, Max: 900, Min: 300, Overlap: 2}
}

// Validate checks the ordering constraint 0 <= overlap < min < target <= max.
func (o Options) Validate() error {
	if o.Overlap < 0 {
		return fmt.Errorf("chunk options: overlap must not be negative, got %.1f", o.Overlap)
	}
	if o.Min <= o.Overlap {
		return fmt.Errorf("chunk options: min duration %.1f must exceed overlap %.1f", o.Min, o.Overlap)
	}
	if o.Target <= o.Min {
		return fmt.Errorf("chunk options: target duration %.1f must exceed min duration %.1f", o.Target, o.Min)
	}
	if o.Max < o.Target {
		return fmt.Errorf("chunk options: max duration %.1f must be at least target duration %.1f", o.Max, o.Target)
	}
	return nil
}

// Plan partitions [0, totalDuration) into chunks. The result is
// deterministic for identical inputs: IDs increase from zero, every chunk
// after the first starts exactly Overlap seconds before its predecessor's
// end, and the final chunk ends exactly at totalDuration.
func Plan(totalDuration float64, opts Options) ([]Chunk, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("%w: %.3f", ErrInvalidDuration, totalDuration)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if totalDuration <= opts.Target {
		return []Chunk{{ID: 0, Start: 0, End: totalDuration}}, nil
	}

	var chunks []Chunk
	start := 0.0
	id := 0

	for start < totalDuration {
		end := start + opts.Target
		if end > totalDuration {
			end = totalDuration
		}

		// Fold a pathologically short tail into the current chunk.
		if remaining := totalDuration - end; remaining > 0 && remaining < opts.Min {
			end = totalDuration
		}

		chunks = append(chunks, Chunk{
			ID:           id,
			Start:        start,
			End:          end,
			OverlapsPrev: id > 0,
			OverlapsNext: end < totalDuration,
		})

		if end >= totalDuration {
			break
		}
		start = end - opts.Overlap
		id++
	}

	return chunks, nil
}
