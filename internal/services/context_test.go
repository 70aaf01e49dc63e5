package services

import (
	"context"
	"testing"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := RunIDFromContext(ctx); ok {
		t.Fatalf("unexpected run ID on empty context")
	}
	ctx = WithRunID(ctx, "run-42")
	id, ok := RunIDFromContext(ctx)
	if !ok || id != "run-42" {
		t.Fatalf("expected run-42, got %q (%v)", id, ok)
	}
}

func TestChunkIDRoundTrip(t *testing.T) {
	ctx := WithChunkID(context.Background(), 7)
	id, ok := ChunkIDFromContext(ctx)
	if !ok || id != 7 {
		t.Fatalf("expected chunk 7, got %d (%v)", id, ok)
	}
}

func TestComponentRoundTrip(t *testing.T) {
	ctx := WithComponent(context.Background(), "merge")
	name, ok := ComponentFromContext(ctx)
	if !ok || name != "merge" {
		t.Fatalf("expected merge, got %q (%v)", name, ok)
	}
	if WithComponent(context.Background(), "") != context.Background() {
		t.Fatalf("empty component should not allocate a new context")
	}
}
