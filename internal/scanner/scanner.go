// Package scanner walks an iPod-style music tree for podscan.
package scanner

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// NotADirectory indicates the root path exists but is a file.
	NotADirectory ScanErrorType = "NOT_A_DIRECTORY"
	// ReadFailed covers any other failure to list a directory.
	ReadFailed ScanErrorType = "READ_FAILED"
)

// FolderPrefix is the leading letter of the numbered folders (F00, F01, ...)
// an iPod spreads its music across. Other folders are never descended into.
const FolderPrefix = "F"

// sidecarPrefix marks AppleDouble resource-fork files.
const sidecarPrefix = "._"

var supportedExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".m4p":  true,
	".aac":  true,
	".alac": true,
	".wav":  true,
	".aif":  true,
	".aiff": true,
}

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "source path inaccessible: " + string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// FileEntry represents an audio file found during scanning.
type FileEntry struct {
	Folder   string // name of the F* folder holding the file
	Name     string // Filename only
	FullPath string
	Ext      string // lower-case extension with leading dot
}

// SupportedExtensions returns the audio extensions the walker yields, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether a file name would be yielded by Walk: not an
// AppleDouble sidecar and carrying a supported extension.
func IsSupported(name string) bool {
	if strings.HasPrefix(name, sidecarPrefix) {
		return false
	}
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsMusicFolder reports whether a directory name follows the F* convention.
func IsMusicFolder(name string) bool {
	return strings.HasPrefix(name, FolderPrefix)
}

// Walk lazily yields every supported audio file under the F* folders of
// root, folders and files each in lexicographic order.
//
// If root is not a readable directory the sequence yields a single
// *ScanError. A folder that cannot be listed yields a *ScanError and ends
// the sequence. Every call re-reads the tree.
func Walk(root string) iter.Seq2[FileEntry, error] {
	return func(yield func(FileEntry, error) bool) {
		folders, err := musicFolders(root)
		if err != nil {
			yield(FileEntry{}, err)
			return
		}

		for _, folder := range folders {
			folderPath := filepath.Join(root, folder)
			entries, err := os.ReadDir(folderPath)
			if err != nil {
				yield(FileEntry{}, classify(folderPath, err))
				return
			}

			// os.ReadDir already sorts by name.
			for _, entry := range entries {
				if entry.IsDir() || !IsSupported(entry.Name()) {
					continue
				}
				fe := FileEntry{
					Folder:   folder,
					Name:     entry.Name(),
					FullPath: filepath.Join(folderPath, entry.Name()),
					Ext:      strings.ToLower(filepath.Ext(entry.Name())),
				}
				if !yield(fe, nil) {
					return
				}
			}
		}
	}
}

// CheckRoot verifies root is an accessible directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return classify(root, err)
	}
	if !info.IsDir() {
		return &ScanError{
			Type: NotADirectory,
			Path: root,
			Err:  errors.New("path is not a directory"),
		}
	}
	return nil
}

// MusicFolders returns the full paths of root's F* folders in order.
func MusicFolders(root string) ([]string, error) {
	names, err := musicFolders(root)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(root, name)
	}
	return paths, nil
}

func musicFolders(root string) ([]string, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, classify(root, err)
	}

	var folders []string
	for _, entry := range entries {
		if !IsMusicFolder(entry.Name()) {
			continue
		}
		// Stat follows symlinks, matching a plain isdir check.
		info, err := os.Stat(filepath.Join(root, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		folders = append(folders, entry.Name())
	}
	return folders, nil
}

func classify(path string, err error) *ScanError {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &ScanError{Type: DirectoryNotFound, Path: path, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &ScanError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &ScanError{Type: ReadFailed, Path: path, Err: err}
	}
}
