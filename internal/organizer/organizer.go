// Package organizer copies audio files into destination folders for podscan.
package organizer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyErrorType represents the type of copy error.
type CopyErrorType string

const (
	// SourceNotFound indicates the source file does not exist.
	SourceNotFound CopyErrorType = "SOURCE_NOT_FOUND"
	// DestinationExists indicates a file already exists at the destination.
	DestinationExists CopyErrorType = "DESTINATION_EXISTS"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied CopyErrorType = "PERMISSION_DENIED"
	// CopyFailed covers any other I/O failure.
	CopyFailed CopyErrorType = "COPY_FAILED"
)

// CopyError represents an error that occurred while copying a file.
type CopyError struct {
	Type CopyErrorType
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// CopyResult represents the result of a successful copy.
type CopyResult struct {
	SourcePath      string
	DestinationPath string
	Bytes           int64
	IsDuplicate     bool   // True if the file was renamed due to a name collision
	OriginalName    string // Name before collision renaming (empty if not a duplicate)
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return wrap(dir, err)
	}
	return nil
}

// CopyInto copies src into destDir under its own base name. On a name
// collision the copy gets the next free "name_N.ext" instead of overwriting.
func CopyInto(src, destDir string) (*CopyResult, error) {
	if err := EnsureDir(destDir); err != nil {
		return nil, err
	}

	name := filepath.Base(src)
	destName := UniqueName(destDir, name)
	destPath := filepath.Join(destDir, destName)

	n, err := CopyFile(src, destPath)
	if err != nil {
		return nil, err
	}

	result := &CopyResult{
		SourcePath:      src,
		DestinationPath: destPath,
		Bytes:           n,
		IsDuplicate:     destName != name,
	}
	if result.IsDuplicate {
		result.OriginalName = name
	}
	return result, nil
}

// CopyFile copies src to dst, which must not exist yet, and carries over the
// permission bits and access/modification times. A failed copy removes the
// partial destination.
func CopyFile(src, dst string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, wrap(src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, wrap(src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, &CopyError{Type: DestinationExists, Path: dst, Err: err}
		}
		return 0, wrap(dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return 0, &CopyError{Type: CopyFailed, Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return 0, &CopyError{Type: CopyFailed, Path: dst, Err: err}
	}

	if err := preserveMetadata(dst, info); err != nil {
		return n, &CopyError{Type: CopyFailed, Path: dst, Err: err}
	}
	return n, nil
}

// preserveMetadata applies the source mode and times to dst.
func preserveMetadata(dst string, info os.FileInfo) error {
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	mtime := info.ModTime()
	return os.Chtimes(dst, accessTime(info, mtime), mtime)
}

func wrap(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &CopyError{Type: SourceNotFound, Path: path, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &CopyError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &CopyError{Type: CopyFailed, Path: path, Err: err}
	}
}
