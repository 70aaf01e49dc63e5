// Package notifications pushes run lifecycle events to an ntfy topic.
// With no topic configured every notification is a no-op, so callers
// never guard their calls.
package notifications
