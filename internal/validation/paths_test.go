package validation

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "report.pdf", false},
		{"spaces", "my notes.txt", false},
		{"double dots inside", "data..v2.csv", false},
		{"leading dot", ".hidden", false},
		{"unicode", "résumé.pdf", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"unix separator", "a/b.txt", true},
		{"windows separator", `a\b.txt`, true},
		{"traversal", "../etc/passwd", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Filename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Filename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFilename) {
				t.Errorf("Filename(%q) error should wrap ErrInvalidFilename, got %v", tt.input, err)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"report.pdf", "report.pdf", false},
		{"../../etc/passwd", "passwd", false},
		{`C:\Users\me\notes.txt`, "notes.txt", false},
		{"dir/sub/", "sub", false},
		{"  spaced.txt  ", "spaced.txt", false},
		{"", "", true},
		{".", "", true},
		{"..", "", true},
		{"/", "", true},
		{`\`, "", true},
		{"a\x00b", "", true},
	}

	for _, tt := range tests {
		got, err := BaseName(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidFilename) {
				t.Errorf("BaseName(%q) error = %v, want ErrInvalidFilename", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("BaseName(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPathInDirectory(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		path    string
		baseDir string
		wantErr bool
	}{
		{"relative file", "file.txt", base, false},
		{"absolute inside", filepath.Join(base, "file.txt"), base, false},
		{"base itself", base, base, false},
		{"dotdot prefix in name", "..file.txt", base, false},
		{"relative escape", "../file.txt", base, true},
		{"deep escape", "../../etc/passwd", base, true},
		{"absolute outside", filepath.Join(filepath.Dir(base), "other.txt"), base, true},
		{"empty path", "", base, true},
		{"empty base", "file.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PathInDirectory(tt.path, tt.baseDir)
			if (err != nil) != tt.wantErr {
				t.Errorf("PathInDirectory(%q, %q) error = %v, wantErr %v", tt.path, tt.baseDir, err, tt.wantErr)
			}
		})
	}
}
