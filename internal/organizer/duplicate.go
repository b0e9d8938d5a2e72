package organizer

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// UniqueName returns filename if it is free in destDir, otherwise the first
// free "name_N.ext" for N = 1, 2, ...
//
// Examples:
//   - "song.mp3" -> "song.mp3" (nothing there yet)
//   - "song.mp3" -> "song_1.mp3" (song.mp3 exists)
//   - "song.mp3" -> "song_2.mp3" (song.mp3 and song_1.mp3 exist)
func UniqueName(destDir, filename string) string {
	return UniqueNameWith(filename, func(name string) bool {
		return FileExists(filepath.Join(destDir, name))
	})
}

// UniqueNameWith is UniqueName with a caller-supplied occupancy check. Dry
// runs use it to account for names planned but not yet written.
func UniqueNameWith(filename string, taken func(name string) bool) string {
	if !taken(filename) {
		return filename
	}

	ext := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filename, ext)

	for n := 1; ; n++ {
		candidate := baseName + "_" + strconv.Itoa(n) + ext
		if !taken(candidate) {
			return candidate
		}
	}
}
