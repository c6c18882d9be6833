// Package progress renders upload batches and downloads on a terminal.
//
// Interactive terminals get live mpb bars, one per file plus an aggregate
// bar. Anything else (pipes, CI logs) gets one plain line per state change.
package progress

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/filedrop/filedrop/internal/session"
)

// BatchUI is what the upload commands hand to the session controller.
type BatchUI interface {
	session.Renderer
	session.ByteObserver

	// Writer returns an io.Writer that prints above any live bars.
	Writer() io.Writer

	// IsTerminal reports whether live bars are drawn.
	IsTerminal() bool
}

// NewBatchUI picks the live UI when out is a terminal and the line-based
// renderer otherwise.
func NewBatchUI(out *os.File) BatchUI {
	if term.IsTerminal(int(out.Fd())) {
		enableVirtualTerminal(out)
		return NewUploadUI(out)
	}
	return NewTextUI(out)
}

// truncatePath keeps the last maxComponents elements of path.
// Example: truncatePath("/a/b/c/d/file.txt", 3) → "…/c/d/file.txt"
func truncatePath(path string, maxComponents int) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= maxComponents {
		return filepath.Base(path)
	}
	return "…/" + strings.Join(parts[len(parts)-maxComponents:], "/")
}
