//go:build !windows

package monitor

import (
	"os"
	"syscall"
)

// diskUsage returns the bytes a file actually occupies on disk.
// Stat blocks handle sparse files correctly where logical size would not.
func diskUsage(path string, info os.FileInfo) (int64, error) {
	sys := info.Sys()
	if sys == nil {
		return info.Size(), nil
	}

	stat, ok := sys.(*syscall.Stat_t)
	if !ok {
		return info.Size(), nil
	}

	// Blocks are 512 bytes each regardless of filesystem block size
	return stat.Blocks * 512, nil
}
