package diarize

import (
	"sort"

	"scribe/internal/merge"
)

// ResolveOverlaps reduces intervals to a non-overlapping timeline.
// Intervals are processed left to right: an interval starting inside the
// previous one truncates the previous interval at its start, and an
// interval fully contained in the previous one is dropped. The input is
// never mutated.
func ResolveOverlaps(intervals []merge.Interval) []merge.Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]merge.Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	resolved := make([]merge.Interval, 0, len(sorted))
	for _, iv := range sorted {
		if iv.End <= iv.Start {
			continue
		}
		if len(resolved) == 0 {
			resolved = append(resolved, iv)
			continue
		}
		last := &resolved[len(resolved)-1]
		if iv.Start >= last.End {
			resolved = append(resolved, iv)
			continue
		}
		if iv.End <= last.End {
			// Fully contained in an earlier interval.
			continue
		}
		last.End = iv.Start
		if last.End <= last.Start {
			resolved = resolved[:len(resolved)-1]
		}
		resolved = append(resolved, iv)
	}
	return resolved
}
