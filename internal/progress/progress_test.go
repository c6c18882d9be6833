package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedrop/filedrop/internal/models"
	"github.com/filedrop/filedrop/internal/session"
)

// batchSequence mimics what the controller renders for a batch whose
// second item fails.
func batchSequence() []session.BatchState {
	items := []models.UploadItemStatus{
		{Index: 0, Name: "a.txt", Size: 10},
		{Index: 1, Name: "b.txt", Size: 0},
		{Index: 2, Name: "c.txt", Size: 2048},
	}
	for i := range items {
		items[i].SetState(models.ItemPending)
	}
	s := session.BatchState{
		ID:       "batch-1",
		Items:    items,
		Progress: models.BatchProgress{Total: 3},
		Phase:    session.PhaseUploading,
		Visible:  true,
	}
	s.Status = s.Progress.StatusText()

	var out []session.BatchState
	out = append(out, s.Clone())
	for i, ok := range []bool{true, false, true} {
		s.Items[i].SetState(models.ItemUploading)
		out = append(out, s.Clone())
		if ok {
			s.Items[i].SetState(models.ItemSucceeded)
		} else {
			s.Items[i].SetState(models.ItemFailed)
		}
		s.Progress.Completed++
		s.Status = s.Progress.StatusText()
		out = append(out, s.Clone())
	}
	s.Phase = session.PhaseSettled
	s.Visible = false
	out = append(out, s.Clone())
	return out
}

func TestTextUI(t *testing.T) {
	var buf bytes.Buffer
	ui := NewTextUI(&buf)
	assert.False(t, ui.IsTerminal())

	for _, s := range batchSequence() {
		ui.RenderBatch(s)
	}

	want := []string{
		"Uploading 3 files",
		"Uploading [1/3]: a.txt (10 Bytes)",
		"✓ a.txt done",
		"uploading (1/3)",
		"Uploading [2/3]: b.txt (0 Bytes)",
		"✗ b.txt failed",
		"uploading (2/3)",
		"Uploading [3/3]: c.txt (2 KB)",
		"✓ c.txt done",
		"all uploads complete: 2 succeeded, 1 failed",
	}
	assert.Equal(t, want, strings.Split(strings.TrimSpace(buf.String()), "\n"))
}

func TestTextUIRepeatedRenderPrintsNothingNew(t *testing.T) {
	var buf bytes.Buffer
	ui := NewTextUI(&buf)
	first := batchSequence()[0]
	ui.RenderBatch(first)
	n := buf.Len()
	ui.RenderBatch(first)
	assert.Equal(t, n, buf.Len())
}

func TestUploadUIRunsBatchToCompletion(t *testing.T) {
	var buf bytes.Buffer
	ui := NewUploadUI(&buf)
	assert.True(t, ui.IsTerminal())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, s := range batchSequence() {
			if i == 1 {
				ui.ItemBytes(0, 5, 10)
				ui.ItemBytes(7, 1, 1) // out of range is ignored
			}
			ui.RenderBatch(s)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RenderBatch did not return after the batch settled")
	}

	out := buf.String()
	assert.Contains(t, out, "✓ a.txt")
	assert.Contains(t, out, "✗ b.txt: failed")
	assert.Contains(t, out, "✓ c.txt")
	assert.Contains(t, out, "all uploads complete: 2 succeeded, 1 failed")
	assert.Same(t, &buf, ui.Writer(), "writer falls back to the raw output between batches")
}

func TestUploadUIPendingItemsReadUploading(t *testing.T) {
	var buf bytes.Buffer
	ui := NewUploadUI(&buf)
	seq := batchSequence()

	ui.RenderBatch(seq[0])
	ui.mu.Lock()
	texts := make([]string, len(ui.bars))
	for i, fb := range ui.bars {
		texts[i] = fb.text.Load().(string)
	}
	ui.mu.Unlock()
	assert.Equal(t, []string{"uploading", "uploading", "uploading"}, texts)

	ui.RenderBatch(seq[len(seq)-1])
}

func TestUploadUICancelledItemsAreNotSent(t *testing.T) {
	var buf bytes.Buffer
	ui := NewUploadUI(&buf)

	s := batchSequence()[0]
	ui.RenderBatch(s)
	for i := range s.Items {
		s.Items[i].SetState(models.ItemFailed)
	}
	s.Progress.Completed = 3
	s.Status = s.Progress.StatusText()
	s.Visible = false
	ui.RenderBatch(s)

	assert.Equal(t, 3, strings.Count(buf.String(), "not sent"))
}

type fakeReporter struct {
	starts  []int64
	updates []int64
}

func (f *fakeReporter) Start(total int64, _ string) { f.starts = append(f.starts, total) }
func (f *fakeReporter) Update(c int64)              { f.updates = append(f.updates, c) }
func (f *fakeReporter) Finish()                     {}
func (f *fakeReporter) Error(error)                 {}

func TestTrackStartsOnce(t *testing.T) {
	r := &fakeReporter{}
	fn := Track(r, "a.txt")
	fn(10, 100)
	fn(100, 100)
	assert.Equal(t, []int64{100}, r.starts)
	assert.Equal(t, []int64{10, 100}, r.updates)

	unknown := &fakeReporter{}
	Track(unknown, "b")(5, -1)
	assert.Equal(t, []int64{-1}, unknown.starts)
}

func TestCLIProgressWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewCLIProgress(&buf)
	p.Update(1) // before Start is a no-op
	p.Start(4, "file.bin")
	p.Update(4)
	p.Finish()
	require.Contains(t, buf.String(), "file.bin")

	buf.Reset()
	p.Error(errors.New("boom"))
	assert.Contains(t, buf.String(), "Error: boom")
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "file.txt", truncatePath("file.txt", 2))
	assert.Equal(t, "…/d/file.txt", truncatePath("/a/b/c/d/file.txt", 2))
}
