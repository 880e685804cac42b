package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirStats recursively counts the files under dir and sums their sizes.
// O(number of files); called after every object mutation to keep bucket
// aggregates fresh.
func dirStats(dir string) (count uint64, size uint64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			c, s := dirStats(path)
			count += c
			size += s
			continue
		}
		count++
		if info, err := entry.Info(); err == nil {
			size += uint64(info.Size())
		}
	}
	return count, size
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// HumanSize renders a byte count using base-1024 units: values under
// 1024 as an integer number of bytes, larger values with two decimal
// places ("1536" -> "1.50 KB").
func HumanSize(bytes uint64) string {
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", bytes, sizeUnits[0])
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}
