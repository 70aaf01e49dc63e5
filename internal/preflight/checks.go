package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MinWorkSpaceBytes is the least free scratch space a run may start
// with. A one-hour source at 16kHz mono PCM needs about 115MB per
// extracted copy; 2GiB leaves comfortable headroom for long recordings.
const MinWorkSpaceBytes = 2 << 30

// CheckDirectoryAccess verifies that the directory exists and is
// readable, writable, and traversable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least
// minBytes available.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%.1f GiB free)", path, float64(available)/(1<<30))
	if available < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s, need at least %.1f GiB", detail, float64(minBytes)/(1<<30))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
