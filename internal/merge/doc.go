// Package merge stitches per-chunk recognition results into a single
// transcript on the global timeline. Chunk-local timestamps are rebased
// by each chunk's start offset, duplicate segments in overlap windows
// are discarded, and run statistics are aggregated alongside per-chunk
// detail for diagnostics.
//
// Dedup is a precision-first heuristic: only segments that start inside
// the overlap window are candidates, and only sufficiently long texts
// are compared against the recent accepted tail. It targets boilerplate
// repetition across chunk seams, not deep alignment.
package merge
