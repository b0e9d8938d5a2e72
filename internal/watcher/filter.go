package watcher

import (
	"path/filepath"

	"podscan/internal/scanner"
)

// FileFilter decides which file system events under a music root matter.
type FileFilter struct {
	root string
}

// NewFileFilter creates a FileFilter for the given music root.
func NewFileFilter(root string) *FileFilter {
	return &FileFilter{root: filepath.Clean(root)}
}

// ShouldIgnore reports whether an event on path can be ignored: anything
// that is not a supported audio file sitting directly in an F* folder of
// the root. AppleDouble sidecars ("._x.mp3") are ignored too.
func (f *FileFilter) ShouldIgnore(path string) bool {
	if !scanner.IsSupported(filepath.Base(path)) {
		return true
	}
	folder := filepath.Dir(filepath.Clean(path))
	if filepath.Dir(folder) != f.root {
		return true
	}
	return !scanner.IsMusicFolder(filepath.Base(folder))
}

// IsMusicFolder reports whether path is an F* folder directly under the root.
func (f *FileFilter) IsMusicFolder(path string) bool {
	clean := filepath.Clean(path)
	return filepath.Dir(clean) == f.root && scanner.IsMusicFolder(filepath.Base(clean))
}

// Root returns the filtered music root.
func (f *FileFilter) Root() string {
	return f.root
}
