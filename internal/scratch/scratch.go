package scratch

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"scribe/internal/services"
)

// Dir is an acquired per-run scratch directory. It is exclusive to one
// run: the embedded lock stops a concurrent process from reaping or
// reusing it.
type Dir struct {
	runID string
	path  string
	lock  *flock.Flock

	mu       sync.Mutex
	released bool
}

// Acquire creates a fresh run directory under baseDir and locks it.
func Acquire(baseDir string) (*Dir, error) {
	runID := uuid.NewString()
	path := filepath.Join(baseDir, "run-"+runID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "scratch", "create run directory", "", err)
	}

	lock := flock.New(filepath.Join(path, ".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		_ = os.RemoveAll(path)
		return nil, services.Wrap(services.ErrTransient, "scratch", "lock run directory", "", err)
	}
	if !ok {
		_ = os.RemoveAll(path)
		return nil, services.Wrap(services.ErrTransient, "scratch", "lock run directory",
			"run directory is already locked by another process", nil)
	}

	return &Dir{runID: runID, path: path, lock: lock}, nil
}

// RunID is the unique identifier minted for this run.
func (d *Dir) RunID() string { return d.runID }

// Path is the directory artifacts should be written into.
func (d *Dir) Path() string { return d.path }

// Release unlocks and removes the directory with everything in it. It
// is idempotent so callers can defer it unconditionally.
func (d *Dir) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil
	}
	d.released = true

	if err := d.lock.Unlock(); err != nil {
		_ = os.RemoveAll(d.path)
		return services.Wrap(services.ErrTransient, "scratch", "unlock run directory", "", err)
	}
	if err := os.RemoveAll(d.path); err != nil {
		return services.Wrap(services.ErrTransient, "scratch", "remove run directory", "", err)
	}
	return nil
}
