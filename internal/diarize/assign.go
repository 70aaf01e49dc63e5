package diarize

import (
	"scribe/internal/merge"
	"scribe/internal/transcribe"
)

// Assign labels every segment in place with the speaker whose interval
// has the largest positive temporal overlap. Ties go to the earlier
// interval; segments overlapping nothing get SpeakerUnknown.
func Assign(segments []transcribe.Segment, intervals []merge.Interval) {
	for i := range segments {
		segments[i].Speaker = bestSpeaker(segments[i], intervals)
	}
}

func bestSpeaker(seg transcribe.Segment, intervals []merge.Interval) string {
	best := SpeakerUnknown
	bestOverlap := 0.0
	for _, iv := range intervals {
		overlap := overlapSeconds(seg.Start, seg.End, iv.Start, iv.End)
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = iv.Speaker
		}
	}
	return best
}

func overlapSeconds(aStart, aEnd, bStart, bEnd float64) float64 {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	return end - start
}
