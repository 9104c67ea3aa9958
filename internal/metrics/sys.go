package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"time"
)

var startedAt = time.Now()

// SysHealth is a snapshot of the process, its sessions and the data it keeps.
type SysHealth struct {
	Uptime         time.Duration
	AllocMB        uint64
	SysMB          uint64
	NumGC          uint32
	Goroutines     int
	ActiveSessions int
	DataFiles      int
	DataDiskSize   string
}

// GetSysHealth reads runtime stats and measures dataPath, which is either the
// directory of the SQLite file or the root of the file store.
func GetSysHealth(dataPath string, activeSessions int) SysHealth {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	files, bytes := usage(dataPath)
	return SysHealth{
		Uptime:         time.Since(startedAt).Round(time.Second),
		AllocMB:        mem.Alloc >> 20,
		SysMB:          mem.Sys >> 20,
		NumGC:          mem.NumGC,
		Goroutines:     runtime.NumGoroutine(),
		ActiveSessions: activeSessions,
		DataFiles:      files,
		DataDiskSize:   humanSize(bytes),
	}
}

// usage counts regular files under root. Unreadable entries are skipped.
func usage(root string) (files int, bytes int64) {
	filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			files++
			bytes += info.Size()
		}
		return nil
	})
	return files, bytes
}

func humanSize(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
