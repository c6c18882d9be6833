package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/filedrop/filedrop/internal/format"
	"github.com/filedrop/filedrop/internal/models"
	"github.com/filedrop/filedrop/internal/session"
)

// UploadUI draws a batch with mpb: one bar per file and an aggregate bar
// carrying the batch status line. A fresh mpb container is used per batch
// and shut down once the batch settles.
type UploadUI struct {
	out io.Writer

	mu       sync.Mutex
	batchID  string
	progress *mpb.Progress
	overall  *mpb.Bar
	status   atomic.Value // string
	bars     []*fileBar
}

// fileBar state is guarded by UploadUI.mu; text is read by the mpb
// render goroutine and is stored atomically.
type fileBar struct {
	bar        *mpb.Bar
	name       string
	size       int64
	state      models.ItemState
	text       atomic.Value // string
	startTime  time.Time
	lastUpdate time.Time
}

// NewUploadUI creates a live UI writing to out.
func NewUploadUI(out io.Writer) *UploadUI {
	return &UploadUI{out: out}
}

// IsTerminal is always true for the live UI.
func (u *UploadUI) IsTerminal() bool { return true }

// Writer prints through mpb while a batch is on screen so lines do not
// tear the bars.
func (u *UploadUI) Writer() io.Writer {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.progress != nil {
		return u.progress
	}
	return u.out
}

// RenderBatch applies one batch state to the bars.
func (u *UploadUI) RenderBatch(s session.BatchState) {
	u.mu.Lock()
	if s.ID != u.batchID || u.progress == nil {
		u.start(s)
	}
	u.status.Store(s.Status)

	for i, it := range s.Items {
		if i >= len(u.bars) {
			break
		}
		u.apply(u.bars[i], it)
	}
	u.overall.SetCurrent(int64(s.Progress.Completed))

	var p *mpb.Progress
	if !s.Visible {
		u.overall.SetTotal(int64(s.Progress.Total), true)
		u.printf("%s: %d succeeded, %d failed\n", s.Status, s.Succeeded(), s.Failed())
		p = u.progress
		u.progress, u.overall, u.bars, u.batchID = nil, nil, nil, ""
	}
	u.mu.Unlock()

	if p != nil {
		p.Wait()
	}
}

// ItemBytes advances the bar of the file being uploaded.
func (u *UploadUI) ItemBytes(index int, transferred, total int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if index < 0 || index >= len(u.bars) {
		return
	}
	fb := u.bars[index]
	if fb.state.IsTerminal() {
		return
	}
	now := time.Now()
	fb.bar.EwmaSetCurrent(transferred, now.Sub(fb.lastUpdate))
	fb.lastUpdate = now
}

func (u *UploadUI) start(s session.BatchState) {
	u.batchID = s.ID
	u.status.Store(s.Status)
	u.progress = mpb.New(
		mpb.WithOutput(u.out),
		mpb.WithRefreshRate(300*time.Millisecond),
		mpb.WithWidth(100),
	)
	u.bars = make([]*fileBar, len(s.Items))
	for i, it := range s.Items {
		u.bars[i] = u.newFileBar(i, len(s.Items), it)
	}

	u.overall = u.progress.New(int64(len(s.Items)),
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string { return u.status.Load().(string) }, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(decor.Percentage(decor.WCSyncSpace)),
	)
}

func (u *UploadUI) newFileBar(i, n int, it models.UploadItemStatus) *fileBar {
	fb := &fileBar{
		name:       it.Name,
		size:       it.Size,
		state:      it.State,
		startTime:  time.Now(),
		lastUpdate: time.Now(),
	}
	fb.text.Store(it.State.DisplayText())
	label := fmt.Sprintf("[%d/%d] %s (%s)", i+1, n, truncatePath(it.Name, 2), format.Size(it.Size))

	fb.bar = u.progress.New(barTotal(it.Size),
		mpb.BarStyle().
			Lbound("[").
			Filler("█").
			Tip("█").
			Padding("░").
			Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(label, decor.WCSyncSpaceR),
			decor.Any(func(decor.Statistics) string { return fb.text.Load().(string) }, decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
			decor.Name("  "),
			decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 30, decor.WCSyncSpace),
		),
		mpb.BarRemoveOnComplete(),
	)
	return fb
}

// apply moves one bar to the item's state. Called with u.mu held.
func (u *UploadUI) apply(fb *fileBar, it models.UploadItemStatus) {
	if fb.state == it.State {
		return
	}
	prev := fb.state
	fb.state = it.State
	fb.text.Store(it.State.DisplayText())

	switch it.State {
	case models.ItemUploading:
		fb.startTime = time.Now()
		fb.lastUpdate = fb.startTime
	case models.ItemSucceeded:
		total := barTotal(fb.size)
		fb.bar.SetCurrent(total)
		fb.bar.SetTotal(total, true)
		u.printf("✓ %s (%s, %s)\n", fb.name, format.Size(fb.size), time.Since(fb.startTime).Round(time.Millisecond))
	case models.ItemFailed:
		fb.bar.Abort(false)
		if prev == models.ItemPending {
			u.printf("✗ %s: not sent\n", fb.name)
		} else {
			u.printf("✗ %s: %s\n", fb.name, it.DisplayText)
		}
	}
}

func (u *UploadUI) printf(msg string, args ...any) {
	_, _ = fmt.Fprintf(u.progress, msg, args...)
}

// barTotal keeps empty files from leaving mpb with an unknown total.
func barTotal(size int64) int64 {
	if size <= 0 {
		return 1
	}
	return size
}
