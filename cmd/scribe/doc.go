// Command scribe transcribes audio and video files into timestamped,
// speaker-attributed transcripts.
package main
