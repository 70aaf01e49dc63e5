// Package probe provides a typed wrapper around ffprobe JSON output for
// audio sources.
//
// The pipeline needs the container duration before it can plan chunks,
// and the audio stream layout to pick the track handed to extraction.
package probe
