// Package localfs decides which local files are worth uploading when they
// show up in a watched directory.
package localfs

import (
	"path/filepath"
	"strings"
)

// partialExts are written by browsers and editors while a file is still
// being produced.
var partialExts = map[string]bool{
	".part":       true,
	".partial":    true,
	".crdownload": true,
	".download":   true,
	".tmp":        true,
	".swp":        true,
}

// IsHiddenName reports whether name (not a path) is a dot file.
// "." and ".." are not hidden.
func IsHiddenName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// IsHidden reports whether the file at path is hidden: a dot file, or on
// Windows a file with the hidden attribute.
func IsHidden(path string) bool {
	return IsHiddenName(filepath.Base(path)) || hasHiddenAttribute(path)
}

// IsPartial reports whether name looks like a file still being written.
func IsPartial(name string) bool {
	base := filepath.Base(name)
	if strings.HasSuffix(base, "~") || strings.HasPrefix(base, "~$") {
		return true
	}
	return partialExts[strings.ToLower(filepath.Ext(base))]
}

// Ignored reports whether a file appearing at path should not be uploaded.
func Ignored(path string) bool {
	return IsPartial(path) || IsHidden(path)
}
