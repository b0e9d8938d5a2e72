//go:build !linux && !darwin

package organizer

import (
	"os"
	"time"
)

func accessTime(_ os.FileInfo, fallback time.Time) time.Time {
	return fallback
}
