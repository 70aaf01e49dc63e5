// Package scratch manages per-run working directories for extracted
// chunk artifacts. Each run gets a uniquely named directory guarded by a
// file lock, and Release removes it on success and failure paths alike.
package scratch
