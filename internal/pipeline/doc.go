// Package pipeline drives one transcription run end to end: probe the
// source, plan chunks, extract and recognize them concurrently, merge
// the results, optionally attribute speakers, write the output files,
// and record the run in history.
package pipeline
