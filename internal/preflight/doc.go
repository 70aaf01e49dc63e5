// Package preflight verifies the environment before a run starts:
// required binaries on PATH, writable directories, and enough free
// scratch space for extracted chunk artifacts.
package preflight
