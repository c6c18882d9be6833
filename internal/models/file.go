// Package models defines the data structures shared by the upload session,
// the registry view and the backend client.
package models

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StoredFile represents a file held by the backend registry.
// Name is unique within the registry.
type StoredFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// OpenFunc returns a fresh reader over a selected file's content.
type OpenFunc func() (io.ReadCloser, error)

// SelectedFile is one file chosen by the user for the current batch.
// The content stays with whatever produced the selection; the session only
// opens it for the duration of its upload request.
type SelectedFile struct {
	Name string
	Size int64
	open OpenFunc
}

// NewSelectedFile creates a SelectedFile backed by an arbitrary opener.
func NewSelectedFile(name string, size int64, open OpenFunc) SelectedFile {
	if size < 0 {
		size = 0
	}
	return SelectedFile{Name: name, Size: size, open: open}
}

// LocalFile creates a SelectedFile for a path on disk.
func LocalFile(path string) (SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SelectedFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return SelectedFile{}, fmt.Errorf("'%s' is a directory, not a file", path)
	}

	return NewSelectedFile(filepath.Base(path), info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// Open returns a reader over the file content.
func (f SelectedFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content source", f.Name)
	}
	return f.open()
}
