// Package registry renders the backend's list of stored files and wires the
// per-file download and delete actions.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/filedrop/filedrop/internal/api"
	"github.com/filedrop/filedrop/internal/events"
	"github.com/filedrop/filedrop/internal/format"
	"github.com/filedrop/filedrop/internal/logging"
	"github.com/filedrop/filedrop/internal/models"
)

// Placeholders shown instead of a list.
const (
	EmptyPlaceholder = "no files yet"
	ErrorPlaceholder = "could not load files"
	LoadingText      = "loading files..."
)

// State is what the view currently shows.
type State string

const (
	StateLoading State = "loading"
	StateListed  State = "listed"
	StateEmpty   State = "empty"
	StateError   State = "error"
)

// Backend is the part of the API client the view needs.
type Backend interface {
	ListFiles(ctx context.Context) ([]models.StoredFile, error)
	DeleteFile(ctx context.Context, name string) error
	DownloadURL(name string) string
}

// Renderer draws a snapshot of the view.
type Renderer interface {
	RenderRegistry(s Snapshot)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notify(message string)
}

// Opener hands a download URL to whatever fetches it (a browser, a file saver).
type Opener interface {
	Open(ctx context.Context, url, name string) error
}

// Entry is one rendered registry row.
type Entry struct {
	Name        string
	Size        int64
	SizeText    string
	DownloadURL string
}

// Snapshot is the full content of the view at one point in time.
// Entries is non-empty only in StateListed; Placeholder is set otherwise.
type Snapshot struct {
	State       State
	Entries     []Entry
	Placeholder string
	Err         error
}

// Options configures a View. Only Backend is required.
type Options struct {
	Renderer  Renderer
	Confirmer Confirmer
	Notifier  Notifier
	Opener    Opener
	EventBus  *events.EventBus
	Logger    *logging.Logger
}

// View is the file registry view.
type View struct {
	backend   Backend
	renderer  Renderer
	confirmer Confirmer
	notifier  Notifier
	opener    Opener
	eventBus  *events.EventBus
	logger    *logging.Logger

	// held for a whole refresh so snapshots are rendered in order
	mu       sync.Mutex
	snapshot Snapshot
}

// NewView creates a registry view over backend.
func NewView(backend Backend, opts Options) *View {
	v := &View{
		backend:   backend,
		renderer:  opts.Renderer,
		confirmer: opts.Confirmer,
		notifier:  opts.Notifier,
		opener:    opts.Opener,
		eventBus:  opts.EventBus,
		logger:    opts.Logger,
		snapshot:  Snapshot{State: StateLoading, Placeholder: LoadingText},
	}
	if v.logger == nil {
		v.logger = logging.NewNopLogger()
	}
	return v
}

// Snapshot returns what the view currently shows.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot.clone()
}

// Refresh fetches the registry and replaces the whole view with the result:
// the list in backend order, the empty placeholder, or the error placeholder.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.show(Snapshot{State: StateLoading, Placeholder: LoadingText})

	files, err := v.backend.ListFiles(ctx)
	if err != nil {
		v.logger.Warn().Err(err).Str("kind", api.FailureKind(err)).Msg("failed to fetch file list")
		v.show(Snapshot{State: StateError, Placeholder: ErrorPlaceholder, Err: err})
		v.eventBus.PublishRegistry(0, err)
		return err
	}

	if len(files) == 0 {
		v.show(Snapshot{State: StateEmpty, Placeholder: EmptyPlaceholder})
	} else {
		entries := make([]Entry, len(files))
		for i, f := range files {
			entries[i] = Entry{
				Name:        f.Name,
				Size:        f.Size,
				SizeText:    format.Size(f.Size),
				DownloadURL: v.backend.DownloadURL(f.Name),
			}
		}
		v.show(Snapshot{State: StateListed, Entries: entries})
	}

	v.logger.Debug().Int("files", len(files)).Msg("file list refreshed")
	v.eventBus.PublishRegistry(len(files), nil)
	return nil
}

// Download opens the backend download URL for name.
func (v *View) Download(ctx context.Context, name string) error {
	if v.opener == nil {
		return errors.New("registry: no opener configured")
	}
	u := v.backend.DownloadURL(name)
	v.logger.Debug().Str("file", name).Str("url", u).Msg("opening download")
	return v.opener.Open(ctx, u, name)
}

// DeletePrompt is the confirmation question for name.
func DeletePrompt(name string) string {
	return fmt.Sprintf("Delete %q? This cannot be undone.", name)
}

// Delete asks for confirmation, deletes name, and refreshes the view.
// It reports whether the file was deleted. A declined confirmation makes no
// network call and changes nothing. Failures are shown through the Notifier
// and returned.
func (v *View) Delete(ctx context.Context, name string) (bool, error) {
	if v.confirmer == nil {
		return false, errors.New("registry: no confirmer configured")
	}

	ok, err := v.confirmer.Confirm(ctx, DeletePrompt(name))
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		v.logger.Debug().Str("file", name).Msg("delete cancelled")
		return false, nil
	}

	if err := v.backend.DeleteFile(ctx, name); err != nil {
		v.logger.Warn().Err(err).Str("file", name).Str("kind", api.FailureKind(err)).Msg("delete failed")
		v.notify(DeleteFailureMessage(name, err))
		return false, err
	}

	v.logger.Info().Str("file", name).Msg("file deleted")
	v.eventBus.PublishFileDeleted(name)

	// The deletion happened; a failed refresh is already shown as the error placeholder.
	_ = v.Refresh(ctx)
	return true, nil
}

// DeleteFailureMessage builds the notice for a failed delete: the backend's
// message when it sent one, a generic notice otherwise.
func DeleteFailureMessage(name string, err error) string {
	if msg, ok := api.BackendMessage(err); ok {
		return fmt.Sprintf("Could not delete %q: %s", name, msg)
	}
	if api.IsTransportError(err) {
		return fmt.Sprintf("Could not delete %q: the server could not be reached.", name)
	}
	return fmt.Sprintf("Could not delete %q. Please try again.", name)
}

func (v *View) notify(msg string) {
	if v.notifier != nil {
		v.notifier.Notify(msg)
	}
}

// show must be called with mu held.
func (v *View) show(s Snapshot) {
	v.snapshot = s
	if v.renderer != nil {
		v.renderer.RenderRegistry(s.clone())
	}
}

func (s Snapshot) clone() Snapshot {
	c := s
	c.Entries = append([]Entry(nil), s.Entries...)
	return c
}
