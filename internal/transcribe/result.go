package transcribe

import (
	"sort"
	"time"

	"scribe/internal/chunk"
)

// ChunkResult records the outcome of one chunk, successful or not. Failed
// chunks keep their record with empty segments so partial degradation
// stays observable downstream.
type ChunkResult struct {
	Chunk              chunk.Chunk   `json:"chunk"`
	Success            bool          `json:"success"`
	Segments           []Segment     `json:"segments"`
	Language           string        `json:"language,omitempty"`
	LanguageConfidence float64       `json:"language_confidence,omitempty"`
	SourceDuration     float64       `json:"source_duration,omitempty"`
	ProcessingTime     time.Duration `json:"processing_time"`
	Err                string        `json:"error,omitempty"`
}

func failedResult(c chunk.Chunk, elapsed time.Duration, err error) ChunkResult {
	return ChunkResult{
		Chunk:          c,
		Success:        false,
		Segments:       nil,
		ProcessingTime: elapsed,
		Err:            err.Error(),
	}
}

func sortByChunkID(results []ChunkResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}
