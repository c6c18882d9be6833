package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/models"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.NewConfig()
	cfg.ServerURL = srv.URL + "/"
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func memFile(name, content string) models.SelectedFile {
	return models.NewSelectedFile(name, int64(len(content)), func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	})
}

// TestNewClientRejectsEmptyBaseURL verifies that NewClient fails with a clear
// error instead of producing "unsupported protocol scheme" on every request.
func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	cfg := config.NewConfig()
	cfg.ServerURL = "  "

	_, err := NewClient(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server URL is empty")
}

func TestUploadSendsSingleFileField(t *testing.T) {
	var gotName, gotBody string
	var fields int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = len(r.MultipartForm.File) + len(r.MultipartForm.Value)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(data)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not json, ignored"))
	}))

	var last, total int64
	err := c.Upload(context.Background(), memFile("report.txt", "hello world"), func(done, tot int64) {
		last, total = done, tot
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fields)
	assert.Equal(t, "report.txt", gotName)
	assert.Equal(t, "hello world", gotBody)
	assert.Equal(t, int64(11), last)
	assert.Equal(t, int64(11), total)
}

func TestUploadNon2xxIsBackendFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = w.Write([]byte(`{"error":"file too large"}`))
	}))

	err := c.Upload(context.Background(), memFile("big.bin", "xxxx"), nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusRequestEntityTooLarge, se.StatusCode)
	assert.Equal(t, FailureBackend, FailureKind(err))
	msg, ok := BackendMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "file too large", msg)
}

func TestUploadIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := config.NewConfig()
	cfg.ServerURL = srv.URL
	cfg.MaxRetries = 3
	c, err := NewClient(cfg)
	require.NoError(t, err)

	require.Error(t, c.Upload(context.Background(), memFile("a", "b"), nil))
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := config.NewConfig()
	cfg.ServerURL = url
	c, err := NewClient(cfg)
	require.NoError(t, err)

	err = c.Upload(context.Background(), memFile("a.txt", "x"), nil)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.Equal(t, FailureTransport, FailureKind(err))
}

func TestUploadOpenFailure(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	err := c.Upload(context.Background(), models.NewSelectedFile("ghost", 0, nil), nil)
	assert.Error(t, err)
}

func TestListFilesPreservesBackendOrder(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		_, _ = w.Write([]byte(`[{"name":"z.txt","size":1},{"name":"a.txt","size":1024}]`))
	}))

	files, err := c.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.StoredFile{{Name: "z.txt", Size: 1}, {Name: "a.txt", Size: 1024}}, files)
}

func TestListFilesEmptyAndNull(t *testing.T) {
	for _, body := range []string{`[]`, `null`} {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		files, err := c.ListFiles(context.Background())
		require.NoError(t, err, body)
		assert.NotNil(t, files, body)
		assert.Empty(t, files, body)
	}
}

func TestListFilesMalformed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"oops":`))
	}))

	_, err := c.ListFiles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.True(t, IsTransportError(err))
}

func TestListFilesServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.ListFiles(context.Background())
	require.Error(t, err)
	assert.False(t, IsTransportError(err))
}

func TestListFilesRetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := config.NewConfig()
	cfg.ServerURL = srv.URL
	cfg.MaxRetries = 1
	c, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = c.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDownloadURLEncodesName(t *testing.T) {
	cfg := config.NewConfig()
	cfg.ServerURL = "http://files.local:8000/"
	c, err := NewClient(cfg)
	require.NoError(t, err)

	tests := map[string]string{
		"a.txt":         "http://files.local:8000/download/a.txt",
		"my report.pdf": "http://files.local:8000/download/my%20report.pdf",
		"a/b?c#d":       "http://files.local:8000/download/a%2Fb%3Fc%23d",
		"résumé.doc":    "http://files.local:8000/download/r%C3%A9sum%C3%A9.doc",
		"100%_done.txt": "http://files.local:8000/download/100%25_done.txt",
	}
	for name, want := range tests {
		assert.Equal(t, want, c.DownloadURL(name), name)
	}
}

func TestDownloadStreamsBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/my%20file.txt", r.URL.EscapedPath())
		_, _ = w.Write([]byte("payload"))
	}))

	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "my file.txt", &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "payload", buf.String())
}

func TestDownloadNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"file not found"}`))
	}))

	_, err := c.Download(context.Background(), "missing", io.Discard, nil)
	msg, ok := BackendMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "file not found", msg)
}

func TestDeleteFile(t *testing.T) {
	var gotPath, gotMethod string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.EscapedPath(), r.Method
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	}))

	require.NoError(t, c.DeleteFile(context.Background(), "old notes.txt"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/delete/old%20notes.txt", gotPath)
}

func TestDeleteFileBackendMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"locked"}`))
	}))

	err := c.DeleteFile(context.Background(), "a.txt")
	require.Error(t, err)
	msg, ok := BackendMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "locked", msg)
}

func TestDeleteFileWithoutJSONBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<html>nope</html>"))
	}))

	err := c.DeleteFile(context.Background(), "a.txt")
	require.Error(t, err)
	_, ok := BackendMessage(err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "Forbidden")
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	assert.NoError(t, c.Health(context.Background()))
}
