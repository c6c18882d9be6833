package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedrop/filedrop/internal/api"
	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/models"
)

type fakeBackend struct {
	mu        sync.Mutex
	files     []models.StoredFile
	listErr   error
	deleteErr error
	lists     int
	deletes   []string
}

func (f *fakeBackend) ListFiles(ctx context.Context) ([]models.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.StoredFile{}, f.files...), nil
}

func (f *fakeBackend) DeleteFile(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, name)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, sf := range f.files {
		if sf.Name == name {
			f.files = append(f.files[:i], f.files[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) DownloadURL(name string) string {
	return "http://backend/download/" + name
}

type recordingRenderer struct{ snapshots []Snapshot }

func (r *recordingRenderer) RenderRegistry(s Snapshot) { r.snapshots = append(r.snapshots, s) }

type answer struct {
	yes     bool
	prompts []string
}

func (a *answer) Confirm(ctx context.Context, prompt string) (bool, error) {
	a.prompts = append(a.prompts, prompt)
	return a.yes, nil
}

type notices struct{ messages []string }

func (n *notices) Notify(m string) { n.messages = append(n.messages, m) }

func TestRefresh_EmptyShowsPlaceholder(t *testing.T) {
	r := &recordingRenderer{}
	v := NewView(&fakeBackend{}, Options{Renderer: r})

	require.NoError(t, v.Refresh(context.Background()))

	s := v.Snapshot()
	assert.Equal(t, StateEmpty, s.State)
	assert.Equal(t, EmptyPlaceholder, s.Placeholder)
	assert.Empty(t, s.Entries)

	// Loading first, then the terminal state.
	require.Len(t, r.snapshots, 2)
	assert.Equal(t, StateLoading, r.snapshots[0].State)
	assert.Equal(t, StateEmpty, r.snapshots[1].State)
}

func TestRefresh_OneEntryFormatsSize(t *testing.T) {
	v := NewView(&fakeBackend{files: []models.StoredFile{{Name: "a.txt", Size: 1024}}}, Options{})

	require.NoError(t, v.Refresh(context.Background()))

	s := v.Snapshot()
	assert.Equal(t, StateListed, s.State)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, "a.txt", s.Entries[0].Name)
	assert.Equal(t, "1 KB", s.Entries[0].SizeText)
	assert.Equal(t, "http://backend/download/a.txt", s.Entries[0].DownloadURL)
	assert.Empty(t, s.Placeholder)
}

func TestRefresh_KeepsBackendOrder(t *testing.T) {
	v := NewView(&fakeBackend{files: []models.StoredFile{
		{Name: "zeta", Size: 1}, {Name: "alpha", Size: 2}, {Name: "mid", Size: 3},
	}}, Options{})

	require.NoError(t, v.Refresh(context.Background()))

	var names []string
	for _, e := range v.Snapshot().Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestRefresh_ErrorReplacesStaleList(t *testing.T) {
	b := &fakeBackend{files: []models.StoredFile{{Name: "a.txt", Size: 1}}}
	v := NewView(b, Options{})
	require.NoError(t, v.Refresh(context.Background()))
	require.Equal(t, StateListed, v.Snapshot().State)

	b.listErr = errors.New("connection refused")
	require.Error(t, v.Refresh(context.Background()))

	s := v.Snapshot()
	assert.Equal(t, StateError, s.State)
	assert.Equal(t, ErrorPlaceholder, s.Placeholder)
	assert.Empty(t, s.Entries, "error state must not keep entries from the previous fetch")
	assert.Error(t, s.Err)
}

func TestRefresh_MalformedResponseFromBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	cfg := config.NewConfig()
	cfg.ServerURL = srv.URL
	client, err := api.NewClient(cfg)
	require.NoError(t, err)

	v := NewView(client, Options{})
	err = v.Refresh(context.Background())
	assert.ErrorIs(t, err, api.ErrMalformedResponse)
	assert.Equal(t, StateError, v.Snapshot().State)
}

func TestDelete_DeclinedMakesNoCall(t *testing.T) {
	b := &fakeBackend{files: []models.StoredFile{{Name: "keep.txt", Size: 1}}}
	r := &recordingRenderer{}
	conf := &answer{yes: false}
	v := NewView(b, Options{Renderer: r, Confirmer: conf})

	deleted, err := v.Delete(context.Background(), "keep.txt")
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Empty(t, b.deletes)
	assert.Equal(t, 0, b.lists)
	assert.Empty(t, r.snapshots, "declined delete must not change the view")
	require.Len(t, conf.prompts, 1)
	assert.Contains(t, conf.prompts[0], `"keep.txt"`)
}

func TestDelete_ConfirmedRefreshesWithoutName(t *testing.T) {
	b := &fakeBackend{files: []models.StoredFile{{Name: "a.txt", Size: 1}, {Name: "b.txt", Size: 2}}}
	v := NewView(b, Options{Confirmer: &answer{yes: true}})
	require.NoError(t, v.Refresh(context.Background()))

	deleted, err := v.Delete(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"a.txt"}, b.deletes)

	for _, e := range v.Snapshot().Entries {
		assert.NotEqual(t, "a.txt", e.Name)
	}
	assert.Len(t, v.Snapshot().Entries, 1)
}

func TestDelete_BackendMessageIsShown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"locked"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"name":"a.txt","size":3}]`))
	}))
	defer srv.Close()

	cfg := config.NewConfig()
	cfg.ServerURL = srv.URL
	client, err := api.NewClient(cfg)
	require.NoError(t, err)

	n := &notices{}
	v := NewView(client, Options{Confirmer: &answer{yes: true}, Notifier: n})

	deleted, err := v.Delete(context.Background(), "a.txt")
	assert.False(t, deleted)
	assert.Error(t, err)
	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "locked")
}

func TestDelete_TransportFailureShowsGenericNotice(t *testing.T) {
	n := &notices{}
	b := &fakeBackend{deleteErr: errors.New("dial tcp: connection refused")}
	v := NewView(b, Options{Confirmer: &answer{yes: true}, Notifier: n})

	_, err := v.Delete(context.Background(), "a.txt")
	assert.Error(t, err)
	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "could not be reached")
	assert.Equal(t, 0, b.lists, "failed delete must not refresh")
}

func TestDeleteFailureMessage(t *testing.T) {
	assert.Equal(t, `Could not delete "x": locked`,
		DeleteFailureMessage("x", &api.StatusError{StatusCode: 409, Message: "locked"}))
	assert.True(t, strings.HasSuffix(
		DeleteFailureMessage("x", &api.StatusError{StatusCode: 500}), "Please try again."))
}

type recordingOpener struct{ url, name string }

func (o *recordingOpener) Open(ctx context.Context, url, name string) error {
	o.url, o.name = url, name
	return nil
}

func TestDownloadOpensBackendURL(t *testing.T) {
	o := &recordingOpener{}
	b := &fakeBackend{}
	v := NewView(b, Options{Opener: o})

	require.NoError(t, v.Download(context.Background(), "a.txt"))
	assert.Equal(t, "http://backend/download/a.txt", o.url)
	assert.Equal(t, "a.txt", o.name)
	assert.Equal(t, 0, b.lists, "download must not touch the list")
}

func TestDownloadWithoutOpener(t *testing.T) {
	v := NewView(&fakeBackend{}, Options{})
	assert.Error(t, v.Download(context.Background(), "a.txt"))
}
