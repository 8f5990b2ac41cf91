// Package monitor watches the on-disk footprint of the metrics store.
package monitor

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// usageCacheTTL bounds how often the data directory is walked. Badger
// keeps many SST and vlog files, so a walk on every request would be
// wasteful.
const usageCacheTTL = 10 * time.Second

// StorageMonitor reports how much disk the store's data directory
// occupies, against a configured ceiling. Usage is cached between
// walks.
type StorageMonitor struct {
	dataDir  string
	maxBytes int64

	mu          sync.Mutex
	cachedUsage int64
	lastWalk    time.Time
}

// NewStorageMonitor creates a monitor for dataDir with the given limit.
func NewStorageMonitor(dataDir string, maxBytes int64) *StorageMonitor {
	return &StorageMonitor{dataDir: dataDir, maxBytes: maxBytes}
}

// GetUsage returns the current disk usage of the data directory in
// bytes. Results are cached for usageCacheTTL.
func (sm *StorageMonitor) GetUsage() (int64, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if time.Since(sm.lastWalk) < usageCacheTTL {
		return sm.cachedUsage, nil
	}

	usage, err := dirDiskUsage(sm.dataDir)
	if err != nil {
		return 0, err
	}

	sm.cachedUsage = usage
	sm.lastWalk = time.Now()
	return usage, nil
}

// GetLimit returns the configured storage ceiling in bytes.
func (sm *StorageMonitor) GetLimit() int64 {
	return sm.maxBytes
}

// dirDiskUsage walks path and sums actual disk usage. Logical file
// size would overcount: badger preallocates sparse value-log files.
func dirDiskUsage(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		actual, err := diskUsage(filePath, info)
		if err != nil {
			size += info.Size()
			return nil
		}
		size += actual
		return nil
	})
	return size, err
}

// diskUsage is implemented per platform:
// - filesize_unix.go uses syscall.Stat_t.Blocks
// - filesize_windows.go uses GetCompressedFileSizeW
