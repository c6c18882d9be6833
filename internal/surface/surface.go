// Package surface turns user gestures (choosing files, dragging and dropping
// them) into upload batches.
package surface

import (
	"context"
	"errors"
	"sync"

	"github.com/filedrop/filedrop/internal/events"
	"github.com/filedrop/filedrop/internal/logging"
	"github.com/filedrop/filedrop/internal/models"
	"github.com/filedrop/filedrop/internal/session"
)

// BatchStarter is the session entry point. *session.Controller implements it.
type BatchStarter interface {
	Start(ctx context.Context, files []models.SelectedFile) (*session.Batch, error)
}

// Indicator shows or hides the drop zone's active highlight.
type Indicator interface {
	SetActive(active bool)
}

// Chooser is the native file chooser: it returns the user's selection in
// selection order, possibly empty.
type Chooser interface {
	Choose(ctx context.Context) ([]models.SelectedFile, error)
}

// Options configures a Surface.
type Options struct {
	Indicator Indicator
	Chooser   Chooser
	EventBus  *events.EventBus
	Logger    *logging.Logger
}

// Surface forwards selections to the session. It makes no network calls.
type Surface struct {
	starter   BatchStarter
	indicator Indicator
	chooser   Chooser
	eventBus  *events.EventBus
	logger    *logging.Logger

	mu     sync.Mutex
	active bool
}

// New creates a Surface that starts batches on starter.
func New(starter BatchStarter, opts Options) *Surface {
	s := &Surface{
		starter:   starter,
		indicator: opts.Indicator,
		chooser:   opts.Chooser,
		eventBus:  opts.EventBus,
		logger:    opts.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	return s
}

// OnFilesSelected starts one batch for files, in the given order.
// An empty selection is a no-op and returns a nil batch and nil error.
// A selection made while a batch is running is dropped and
// session.ErrBatchInProgress is returned.
func (s *Surface) OnFilesSelected(ctx context.Context, files []models.SelectedFile) (*session.Batch, error) {
	if len(files) == 0 {
		return nil, nil
	}

	b, err := s.starter.Start(ctx, files)
	if err != nil {
		if errors.Is(err, session.ErrBatchInProgress) {
			s.logger.Warn().Int("files", len(files)).Msg("upload already in progress, selection ignored")
		}
		return nil, err
	}
	return b, nil
}

// Choose opens the chooser (a click on the drop zone or the upload button)
// and forwards the selection.
func (s *Surface) Choose(ctx context.Context) (*session.Batch, error) {
	if s.chooser == nil {
		return nil, errors.New("surface: no file chooser configured")
	}
	files, err := s.chooser.Choose(ctx)
	if err != nil {
		return nil, err
	}
	return s.OnFilesSelected(ctx, files)
}

// DragOver marks the drop zone active. It only changes the indication.
func (s *Surface) DragOver() {
	s.setActive(true)
}

// DragLeave clears the active indication.
func (s *Surface) DragLeave() {
	s.setActive(false)
}

// Drop clears the active indication and forwards the dropped files.
func (s *Surface) Drop(ctx context.Context, files []models.SelectedFile) (*session.Batch, error) {
	s.setActive(false)
	return s.OnFilesSelected(ctx, files)
}

// Active reports whether the drop zone is currently highlighted.
func (s *Surface) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Surface) setActive(active bool) {
	s.mu.Lock()
	changed := s.active != active
	s.active = active
	s.mu.Unlock()

	if !changed {
		return
	}
	if s.indicator != nil {
		s.indicator.SetActive(active)
	}
	s.eventBus.PublishDropZoneActive(active)
}
