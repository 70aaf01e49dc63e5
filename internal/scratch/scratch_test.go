package scratch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireCreatesLockedDirectory(t *testing.T) {
	base := t.TempDir()
	dir, err := Acquire(base)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer dir.Release()

	if dir.RunID() == "" {
		t.Fatal("run ID must be set")
	}
	info, err := os.Stat(dir.Path())
	if err != nil || !info.IsDir() {
		t.Fatalf("run directory missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir.Path(), ".lock")); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
}

func TestAcquireMintsDistinctRuns(t *testing.T) {
	base := t.TempDir()
	first, err := Acquire(base)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer first.Release()
	second, err := Acquire(base)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer second.Release()

	if first.Path() == second.Path() || first.RunID() == second.RunID() {
		t.Fatalf("runs must not collide: %s vs %s", first.Path(), second.Path())
	}
}

func TestReleaseRemovesDirectory(t *testing.T) {
	dir, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	artifact := filepath.Join(dir.Path(), "chunk_000.wav")
	if err := os.WriteFile(artifact, []byte("pcm"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	if err := dir.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(dir.Path()); !os.IsNotExist(err) {
		t.Fatalf("directory should be gone, got %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	dir, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := dir.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := dir.Release(); err != nil {
		t.Fatalf("second Release must be a no-op: %v", err)
	}
}
