package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	chunkIDKey   contextKey = "chunk_id"
	componentKey contextKey = "component"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithChunkID annotates context with the chunk ordinal being processed.
func WithChunkID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, chunkIDKey, id)
}

// ChunkIDFromContext extracts the chunk ordinal if present.
func ChunkIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(chunkIDKey)
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithComponent annotates context with the active component name.
func WithComponent(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, name)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(componentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
