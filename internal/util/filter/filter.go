// Package filter selects stored files by name.
// Used by `filedrop list` after the fetch; it never reorders.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/filedrop/filedrop/internal/models"
)

// Config holds filter configuration.
type Config struct {
	// Include patterns (glob-style). Empty means include all.
	// Example: []string{"*.dat", "*.txt"}
	Include []string

	// Exclude patterns (glob-style). Takes precedence over Include.
	Exclude []string

	// Search terms (case-insensitive substring match).
	// A name must contain ALL terms.
	Search []string
}

// Empty reports whether the config filters nothing out.
func (c Config) Empty() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0 && len(c.Search) == 0
}

// Apply returns the files whose names match, in their original order.
func Apply(files []models.StoredFile, config Config) []models.StoredFile {
	if config.Empty() {
		return files
	}
	filtered := make([]models.StoredFile, 0, len(files))
	for _, f := range files {
		if Match(f.Name, config) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// Match checks a file name against the config.
func Match(name string, config Config) bool {
	// 1. Exclude wins
	for _, pattern := range config.Exclude {
		if matched, _ := filepath.Match(pattern, name); matched {
			return false
		}
	}

	// 2. Include
	if len(config.Include) > 0 {
		included := false
		for _, pattern := range config.Include {
			if matched, _ := filepath.Match(pattern, name); matched {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	// 3. Search terms
	lower := strings.ToLower(name)
	for _, term := range config.Search {
		if !strings.Contains(lower, strings.ToLower(term)) {
			return false
		}
	}
	return true
}

// ParsePatternList parses a comma-separated list of patterns into a slice.
// Example: "*.dat,*.txt" -> []string{"*.dat", "*.txt"}
func ParsePatternList(patternStr string) []string {
	if patternStr == "" {
		return nil
	}
	parts := strings.Split(patternStr, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}
