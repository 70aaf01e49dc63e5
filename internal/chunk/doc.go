// Package chunk plans how a long recording is split into bounded,
// overlapping processing windows.
//
// The planner is pure computation: given a total duration and sizing
// options it emits a deterministic, gap-free list of chunks that covers
// [0, totalDuration). Consecutive chunks share a fixed overlap window so
// speech at a boundary is never truncated, and a trailing remainder
// shorter than the minimum is folded into the previous chunk.
package chunk
