//go:build linux || darwin

package organizer

import (
	"os"
	"syscall"
	"time"
)

func accessTime(info os.FileInfo, fallback time.Time) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fallback
	}
	return statAtime(st)
}
