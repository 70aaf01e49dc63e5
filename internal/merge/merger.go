package merge

import (
	"errors"
	"strings"

	"scribe/internal/transcribe"
)

// ErrAllChunksFailed signals that no chunk produced usable segments and
// no transcript can be assembled.
var ErrAllChunksFailed = errors.New("all chunks failed")

// Options tunes overlap deduplication.
type Options struct {
	// Overlap is the seam width in seconds shared by adjacent chunks.
	// Segments starting inside [chunk.Start, chunk.Start+Overlap) are
	// dedup candidates. Zero disables deduplication entirely, matching
	// a plan whose chunks share no audio; unlike Lookback and MinChars
	// it is never back-filled from defaults.
	Overlap float64
	// Lookback is how many already-accepted segments a candidate is
	// compared against.
	Lookback int
	// MinChars is the minimum normalized text length on both sides of a
	// comparison. Short strings repeat naturally and are never deduped.
	MinChars int
}

// DefaultOptions mirrors the planner's default overlap.
func DefaultOptions() Options {
	return Options{Overlap: 2, Lookback: 3, MinChars: 10}
}

// Statistics summarizes a merged run.
type Statistics struct {
	TotalChunks      int     `json:"total_chunks"`
	SuccessfulChunks int     `json:"successful_chunks"`
	FailedChunks     int     `json:"failed_chunks"`
	TotalSegments    int     `json:"total_segments"`
	DedupedSegments  int     `json:"deduped_segments"`
	TotalDuration    float64 `json:"total_duration_seconds"`
	ProcessingTime   float64 `json:"processing_time_seconds"`
	SpeedRatio       float64 `json:"speed_ratio"`
}

// ChunkDetail is the per-chunk diagnostic record kept in the transcript,
// failed chunks included.
type ChunkDetail struct {
	ID             int     `json:"id"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Success        bool    `json:"success"`
	Segments       int     `json:"segments"`
	Language       string  `json:"language,omitempty"`
	ProcessingTime float64 `json:"processing_time_seconds"`
	Err            string  `json:"error,omitempty"`
}

// Interval is a diarization-produced span of speech by one speaker on
// the global timeline.
type Interval struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// SpeakerSummary aggregates one speaker's share of the transcript.
type SpeakerSummary struct {
	Speaker    string  `json:"speaker"`
	Segments   int     `json:"segments"`
	SpeechTime float64 `json:"speech_time_seconds"`
}

// Transcript is the assembled run output. Segments carry global time and
// are immutable after construction except for speaker labels, which the
// attribution stage fills in afterwards.
type Transcript struct {
	Segments         []transcribe.Segment `json:"segments"`
	FullText         string               `json:"full_text"`
	Language         string               `json:"language,omitempty"`
	Stats            Statistics           `json:"statistics"`
	Chunks           []ChunkDetail        `json:"chunks"`
	SpeakerIntervals []Interval           `json:"speaker_intervals,omitempty"`
	Speakers         []SpeakerSummary     `json:"speakers,omitempty"`
	DiarizationError string               `json:"diarization_error,omitempty"`
}

// Merge assembles sorted chunk results into one transcript. Failed
// chunks contribute only diagnostics; if every chunk failed the merge
// itself fails with ErrAllChunksFailed.
func Merge(results []transcribe.ChunkResult, opts Options) (*Transcript, error) {
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultOptions().Lookback
	}
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultOptions().MinChars
	}

	transcript := &Transcript{
		Chunks: make([]ChunkDetail, 0, len(results)),
	}
	stats := &transcript.Stats
	stats.TotalChunks = len(results)

	for _, res := range results {
		detail := ChunkDetail{
			ID:             res.Chunk.ID,
			Start:          res.Chunk.Start,
			End:            res.Chunk.End,
			Success:        res.Success,
			Segments:       len(res.Segments),
			Language:       res.Language,
			ProcessingTime: res.ProcessingTime.Seconds(),
			Err:            res.Err,
		}
		transcript.Chunks = append(transcript.Chunks, detail)

		if !res.Success {
			stats.FailedChunks++
			continue
		}
		stats.SuccessfulChunks++
		stats.ProcessingTime += res.ProcessingTime.Seconds()

		for _, seg := range res.Segments {
			global := rebase(seg, res.Chunk.Start)
			if res.Chunk.OverlapsPrev && global.Start < res.Chunk.Start+opts.Overlap &&
				isDuplicate(global.Text, transcript.Segments, opts) {
				stats.DedupedSegments++
				continue
			}
			transcript.Segments = append(transcript.Segments, global)
		}
	}

	if stats.SuccessfulChunks == 0 {
		return transcript, ErrAllChunksFailed
	}

	stats.TotalSegments = len(transcript.Segments)
	texts := make([]string, 0, len(transcript.Segments))
	for _, seg := range transcript.Segments {
		if seg.End > stats.TotalDuration {
			stats.TotalDuration = seg.End
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			texts = append(texts, text)
		}
	}
	transcript.FullText = strings.Join(texts, " ")
	if stats.TotalDuration > 0 {
		stats.SpeedRatio = stats.ProcessingTime / stats.TotalDuration
	}
	transcript.Language = dominantLanguage(results)

	return transcript, nil
}

func rebase(seg transcribe.Segment, offset float64) transcribe.Segment {
	seg.Start += offset
	seg.End += offset
	if len(seg.Words) > 0 {
		words := make([]transcribe.Word, len(seg.Words))
		copy(words, seg.Words)
		for i := range words {
			words[i].Start += offset
			words[i].End += offset
		}
		seg.Words = words
	}
	return seg
}

func isDuplicate(text string, accepted []transcribe.Segment, opts Options) bool {
	candidate := normalizeText(text)
	if len(candidate) <= opts.MinChars {
		return false
	}
	start := len(accepted) - opts.Lookback
	if start < 0 {
		start = 0
	}
	for _, prev := range accepted[start:] {
		reference := normalizeText(prev.Text)
		if len(reference) <= opts.MinChars {
			continue
		}
		if candidate == reference ||
			strings.Contains(reference, candidate) ||
			strings.Contains(candidate, reference) {
			return true
		}
	}
	return false
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// dominantLanguage picks the most frequent detection across successful
// chunks, first-seen winning ties.
func dominantLanguage(results []transcribe.ChunkResult) string {
	counts := make(map[string]int)
	order := make([]string, 0, 4)
	for _, res := range results {
		if !res.Success || res.Language == "" {
			continue
		}
		if counts[res.Language] == 0 {
			order = append(order, res.Language)
		}
		counts[res.Language]++
	}
	best := ""
	bestCount := 0
	for _, lang := range order {
		if counts[lang] > bestCount {
			best = lang
			bestCount = counts[lang]
		}
	}
	return best
}
