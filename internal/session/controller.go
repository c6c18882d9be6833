// Package session runs upload batches: files are sent strictly one at a time,
// every item ends Succeeded or Failed, and the registry is refreshed once the
// batch has settled.
//
// All renders of a batch happen in order on a single goroutine: the first
// from Start, the rest from the batch worker. Renderers therefore never see
// concurrent or reordered calls for one batch.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/filedrop/filedrop/internal/api"
	"github.com/filedrop/filedrop/internal/constants"
	"github.com/filedrop/filedrop/internal/events"
	"github.com/filedrop/filedrop/internal/logging"
	"github.com/filedrop/filedrop/internal/models"
)

var (
	// ErrBatchInProgress is returned by Start while a previous batch,
	// including its settle delay and refresh, has not finished.
	ErrBatchInProgress = errors.New("an upload batch is already in progress")

	// ErrEmptyBatch is returned by Start for an empty selection.
	ErrEmptyBatch = errors.New("no files to upload")
)

// Uploader sends one file to the backend. *api.Client implements it.
type Uploader interface {
	Upload(ctx context.Context, f models.SelectedFile, progress api.ProgressFunc) error
}

// Refresher re-fetches the authoritative registry. *registry.View implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Renderer maps batch state to the UI.
type Renderer interface {
	RenderBatch(state BatchState)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(BatchState)

func (f RendererFunc) RenderBatch(s BatchState) { f(s) }

// ByteObserver receives byte-level progress of the item being uploaded.
// It is called from the HTTP body writer, not the render goroutine, and must
// be safe for that.
type ByteObserver interface {
	ItemBytes(index int, transferred, total int64)
}

// Options configures a Controller. Uploader is required.
type Options struct {
	Uploader  Uploader
	Refresher Refresher
	Renderer  Renderer
	Observer  ByteObserver
	EventBus  *events.EventBus
	Logger    *logging.Logger

	// SettleDelay defaults to constants.DefaultSettleDelay when zero.
	// Use a negative value for no delay.
	SettleDelay time.Duration
}

// Controller owns the lifecycle of upload batches. One batch runs at a time.
type Controller struct {
	uploader    Uploader
	refresher   Refresher
	renderer    Renderer
	observer    ByteObserver
	eventBus    *events.EventBus
	logger      *logging.Logger
	settleDelay time.Duration

	mu     sync.Mutex
	active *Batch
}

// NewController creates a controller from opts.
func NewController(opts Options) (*Controller, error) {
	if opts.Uploader == nil {
		return nil, errors.New("session: uploader is required")
	}

	c := &Controller{
		uploader:    opts.Uploader,
		refresher:   opts.Refresher,
		renderer:    opts.Renderer,
		observer:    opts.Observer,
		eventBus:    opts.EventBus,
		logger:      opts.Logger,
		settleDelay: opts.SettleDelay,
	}
	if c.renderer == nil {
		c.renderer = RendererFunc(func(BatchState) {})
	}
	if c.logger == nil {
		c.logger = logging.NewNopLogger()
	}
	if c.settleDelay == 0 {
		c.settleDelay = constants.DefaultSettleDelay
	}
	if c.settleDelay < 0 {
		c.settleDelay = 0
	}
	return c, nil
}

// Busy reports whether a batch is running or settling.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Batch is a handle to a started batch.
type Batch struct {
	id    string
	files []models.SelectedFile
	state BatchState // owned by the worker until done is closed
	done  chan struct{}
}

// ID returns the batch identifier.
func (b *Batch) ID() string { return b.id }

// Done is closed once the batch has settled.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Wait blocks until the batch has settled and returns its final state.
func (b *Batch) Wait() BatchState {
	<-b.done
	return b.state.Clone()
}

// Start renders one pending item per file and begins uploading them in the
// background. The files are uploaded in order and none is skipped.
//
// Cancelling ctx does not abort the loop: items not yet sent resolve as
// Failed without a request, and the settle delay and refresh are skipped.
func (c *Controller) Start(ctx context.Context, files []models.SelectedFile) (*Batch, error) {
	if len(files) == 0 {
		return nil, ErrEmptyBatch
	}

	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		return nil, ErrBatchInProgress
	}
	id := uuid.NewString()
	b := &Batch{
		id:    id,
		files: append([]models.SelectedFile(nil), files...),
		state: newBatchState(id, files),
		done:  make(chan struct{}),
	}
	c.active = b
	c.mu.Unlock()

	c.logger.Info().Str("batch", id).Int("files", len(files)).Msg("upload batch started")
	c.eventBus.PublishBatchStarted(id, len(files))
	c.render(b)

	go c.run(ctx, b)
	return b, nil
}

// RunBatch starts a batch and waits for it to settle.
func (c *Controller) RunBatch(ctx context.Context, files []models.SelectedFile) (BatchState, error) {
	b, err := c.Start(ctx, files)
	if err != nil {
		return BatchState{}, err
	}
	return b.Wait(), nil
}

func (c *Controller) run(ctx context.Context, b *Batch) {
	started := time.Now()

	defer func() {
		c.mu.Lock()
		c.active = nil
		c.mu.Unlock()
		close(b.done)
	}()

	for i, f := range b.files {
		b.state.Items[i].SetState(models.ItemUploading)
		c.publishItem(b, i, nil)
		c.render(b)

		err := c.uploadOne(ctx, b, i, f)
		b.state.resolve(i, err == nil)
		c.publishItem(b, i, err)

		if err != nil {
			c.logger.Warn().Err(err).Str("batch", b.id).Int("index", i).Str("file", f.Name).
				Str("kind", api.FailureKind(err)).Msg("upload failed")
		} else {
			c.logger.Info().Str("batch", b.id).Int("index", i).Str("file", f.Name).Msg("upload complete")
		}

		c.eventBus.PublishProgress(b.id, b.state.Progress.Completed, b.state.Progress.Total, b.state.Status)
		c.render(b)
	}

	c.settle(ctx, b)

	b.state.Phase = PhaseSettled
	b.state.Visible = false
	c.render(b)

	c.logger.Info().Str("batch", b.id).Int("succeeded", b.state.Succeeded()).Int("failed", b.state.Failed()).
		Dur("elapsed", time.Since(started)).Msg("upload batch settled")
	c.eventBus.PublishSettled(b.id, b.state.Succeeded(), b.state.Failed(), time.Since(started))
}

func (c *Controller) uploadOne(ctx context.Context, b *Batch, i int, f models.SelectedFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var progress api.ProgressFunc
	if c.observer != nil {
		progress = func(transferred, total int64) {
			c.observer.ItemBytes(i, transferred, total)
		}
	}
	return c.uploader.Upload(ctx, f, progress)
}

// settle keeps terminal statuses on screen, then refreshes the registry.
func (c *Controller) settle(ctx context.Context, b *Batch) {
	if ctx.Err() != nil {
		c.logger.Debug().Str("batch", b.id).Msg("context done, skipping settle delay and refresh")
		return
	}

	if c.settleDelay > 0 {
		timer := time.NewTimer(c.settleDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}

	if c.refresher == nil {
		return
	}
	if err := c.refresher.Refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Str("batch", b.id).Msg("registry refresh after batch failed")
	}
}

func (c *Controller) render(b *Batch) {
	c.renderer.RenderBatch(b.state.Clone())
}

func (c *Controller) publishItem(b *Batch, i int, err error) {
	it := b.state.Items[i]
	c.eventBus.PublishItem(events.ItemEvent{
		BatchID:     b.id,
		Index:       i,
		Name:        it.Name,
		Size:        it.Size,
		State:       string(it.State),
		Error:       err,
		FailureKind: api.FailureKind(err),
	})
}
