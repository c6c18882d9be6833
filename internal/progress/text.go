package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/filedrop/filedrop/internal/format"
	"github.com/filedrop/filedrop/internal/models"
	"github.com/filedrop/filedrop/internal/session"
)

// TextUI prints one line per item transition and per status change.
// It is used when output is not a terminal.
type TextUI struct {
	mu      sync.Mutex
	out     io.Writer
	batchID string
	states  []models.ItemState
	status  string
}

// NewTextUI creates a line-based renderer writing to out.
func NewTextUI(out io.Writer) *TextUI {
	return &TextUI{out: out}
}

func (t *TextUI) IsTerminal() bool  { return false }
func (t *TextUI) Writer() io.Writer { return t.out }

// ItemBytes is ignored; byte counts would flood a log.
func (t *TextUI) ItemBytes(int, int64, int64) {}

// RenderBatch prints what changed since the previous render of the batch.
func (t *TextUI) RenderBatch(s session.BatchState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.ID != t.batchID {
		t.batchID = s.ID
		t.states = make([]models.ItemState, len(s.Items))
		for i := range t.states {
			t.states[i] = models.ItemPending
		}
		// The opening status is implied by the header.
		t.status = s.Status
		fmt.Fprintf(t.out, "Uploading %s\n", format.Count(len(s.Items), "file"))
	}

	n := len(s.Items)
	for i, it := range s.Items {
		if i >= len(t.states) || t.states[i] == it.State {
			continue
		}
		t.states[i] = it.State
		switch it.State {
		case models.ItemUploading:
			fmt.Fprintf(t.out, "Uploading [%d/%d]: %s (%s)\n", i+1, n, truncatePath(it.Name, 2), format.Size(it.Size))
		case models.ItemSucceeded:
			fmt.Fprintf(t.out, "✓ %s %s\n", it.Name, it.DisplayText)
		case models.ItemFailed:
			fmt.Fprintf(t.out, "✗ %s %s\n", it.Name, it.DisplayText)
		}
	}

	if s.Status != t.status {
		t.status = s.Status
		if s.Progress.Done() {
			fmt.Fprintf(t.out, "%s: %d succeeded, %d failed\n", s.Status, s.Succeeded(), s.Failed())
		} else {
			fmt.Fprintln(t.out, s.Status)
		}
	}
}
