// Package services provides the shared error taxonomy and context
// plumbing used by pipeline components.
//
// Errors are tagged with sentinel markers so callers can classify a
// failure (external tool, validation, configuration, transient) without
// string matching. Context carriers propagate run and chunk identifiers
// into logs emitted deep inside a stage.
package services
