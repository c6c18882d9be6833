// Package validation checks file names that cross a trust boundary: names
// sent by uploaders and names listed by the server.
package validation

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidFilename is returned for names that cannot be used as a single
// file in a flat directory.
var ErrInvalidFilename = errors.New("invalid file name")

// Filename validates a bare file name (not a path).
//
// Returns an error if the name:
//   - Is empty, "." or ".."
//   - Contains path separators (/ or \)
//   - Contains null bytes
//
// Names like "foo..bar.txt" are fine.
func Filename(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: contains null byte", ErrInvalidFilename)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidFilename, name)
	}
	return nil
}

// BaseName reduces a name that may carry directories from any OS
// ("C:\Users\me\a.txt", "../a.txt") to its last element and validates it.
func BaseName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if base == "/" {
		base = ""
	}
	if err := Filename(base); err != nil {
		return "", err
	}
	return base, nil
}

// PathInDirectory validates that p, when resolved, stays within baseDir.
// Both are cleaned and made absolute before comparison; a relative p is
// taken relative to baseDir.
//
//	PathInDirectory("../../etc/passwd", "/tmp/uploads") // error: escapes base dir
//	PathInDirectory("file.txt", "/tmp/uploads")         // ok
func PathInDirectory(p, baseDir string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if baseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}

	base, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolved := filepath.Clean(p)
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(base, resolved)
	}

	rel, err := filepath.Rel(base, resolved)
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s (base: %s)", p, baseDir)
	}
	return nil
}
