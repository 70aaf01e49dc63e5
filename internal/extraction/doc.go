// Package extraction materializes chunk windows of a source recording as
// local WAV artifacts the recognition engine can consume.
//
// ffmpeg does the work: each chunk is resampled to mono 16kHz signed
// 16-bit PCM covering exactly [chunk.Start, chunk.End) of the source. A
// failed extraction removes only that chunk from the processing set.
package extraction
