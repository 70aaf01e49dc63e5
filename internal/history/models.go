package history

import "time"

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one recorded transcription run.
type Run struct {
	ID               int64
	RunID            string
	SourcePath       string
	Status           string
	Language         string
	TotalChunks      int
	FailedChunks     int
	TotalSegments    int
	DedupedSegments  int
	DurationSeconds  float64
	ProcessingSecs   float64
	SpeedRatio       float64
	OutputPaths      []string
	DiarizationError string
	Error            string
	StartedAt        time.Time
	FinishedAt       time.Time
}
