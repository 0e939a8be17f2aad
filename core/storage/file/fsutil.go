package file

import (
	"errors"
	"os"
	"runtime"
	"syscall"
)

// SyncDir best-effort fsyncs a directory so that a rename into it becomes
// durable. Platforms and filesystems without directory fsync are ignored.
func SyncDir(dir string) error {
	if dir == "" || runtime.GOOS == "windows" {
		return nil
	}
	df, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer df.Close()
	if err := df.Sync(); err != nil {
		// tmpfs and some network filesystems return EINVAL.
		if errors.Is(err, syscall.EINVAL) {
			return nil
		}
		return err
	}
	return nil
}
