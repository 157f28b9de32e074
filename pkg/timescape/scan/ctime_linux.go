//go:build linux

package scan

import (
	"os"
	"time"
)

// getCreateTime returns the creation time of a file.
// Linux doesn't reliably expose birth time through syscall.Stat_t, so we
// fall back to modification time.
func getCreateTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
