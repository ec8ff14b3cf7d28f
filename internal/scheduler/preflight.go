package scheduler

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// statfsFunc reports the free byte count of the filesystem holding path.
// Injectable so tests can simulate full disks.
type statfsFunc func(path string) (uint64, error)

func realStatfs(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// checkOutputDir verifies the output directory exists, is a directory,
// and is writable.
func checkOutputDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory: %s is not a directory", path)
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("output directory %s: insufficient permissions: %w", path, err)
	}
	return nil
}

// checkFreeSpace rejects a job whose output directory cannot hold a copy
// of the primary file. Remuxing rarely grows a container, so the source
// size is the upper bound.
func checkFreeSpace(statfs statfsFunc, dir string, need int64) error {
	if need <= 0 {
		return nil
	}
	free, err := statfs(dir)
	if err != nil {
		return fmt.Errorf("query free space for %s: %w", dir, err)
	}
	if free < uint64(need) {
		return fmt.Errorf("not enough free space in %s: need %d bytes, have %d", dir, need, free)
	}
	return nil
}
