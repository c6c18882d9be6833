// Package pathutil resolves user-supplied directory arguments.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve turns path into an absolute path. A leading "~" or "~/" is the
// home directory. Symlinks in the existing part of the path are resolved;
// components that do not exist yet are appended unchanged, so an output
// directory can be resolved before it is created. An empty path is the
// working directory.
func Resolve(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		return resolved, nil
	}

	// Resolve the deepest existing ancestor, then re-append the rest.
	current := absPath
	var missing []string
	for {
		if _, err := os.Stat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				resolved = current
			}
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return absPath, nil
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}
