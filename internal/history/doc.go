// Package history persists a record of every transcription run in a
// SQLite database so past runs can be listed and inspected from the CLI.
package history
