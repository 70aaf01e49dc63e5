// Package whisper implements the recognition engine on top of the
// faster-whisper CLI (whisper-ctranslate2), invoked through uvx so the
// model runtime never becomes a build dependency.
//
// Each engine instance owns a model cache directory and is used by
// exactly one pool worker. The CLI writes a JSON transcript next to the
// artifact; the engine parses it into normalized segments.
package whisper
