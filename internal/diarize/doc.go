// Package diarize attributes speakers to merged transcript segments.
//
// It selects between two capabilities: a primary external diarization
// pipeline (whisperx with pyannote, gated on a Hugging Face token) and a
// clustering fallback that embeds each transcript segment's audio window
// and groups the embeddings agglomeratively. When neither is usable the
// run proceeds without labels and the reason is surfaced on the
// transcript as a non-fatal diarization error.
//
// Diarization always runs after the merge, single-threaded against the
// whole source file, so model memory is never duplicated across workers.
package diarize
