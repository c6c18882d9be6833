// Package api is the client for the filedrop backend HTTP surface:
// upload, list, download and delete.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/constants"
	"github.com/filedrop/filedrop/internal/http"
	"github.com/filedrop/filedrop/internal/models"
	"github.com/filedrop/filedrop/internal/version"
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Error().Fields(keysAndValues).Msg("[retry] " + msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("[retry] " + msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.Warn().Fields(keysAndValues).Msg("[retry] " + msg)
}

// ProgressFunc receives the cumulative number of bytes transferred and the
// expected total (-1 when unknown).
type ProgressFunc func(transferred, total int64)

// Client talks to one filedrop backend.
//
// List and delete go through a go-retryablehttp client whose RetryMax comes
// from config (0 by default). Uploads and downloads use a separate transfer
// client and are never retried.
type Client struct {
	httpClient     *nethttp.Client
	transferClient *nethttp.Client
	baseURL        string
}

// NewClient creates a new API client
func NewClient(cfg *config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return nil, fmt.Errorf("server URL is empty - set [server] url in the config file or %s", config.EnvServerURL)
	}

	httpClient, err := http.ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	transferClient, err := http.CreateTransferClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure transfer client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = constants.RetryWaitMin
	retryClient.RetryWaitMax = constants.RetryWaitMax
	retryClient.CheckRetry = http.CheckRetry
	retryClient.Backoff = http.Backoff
	// Hand the last response back unchanged so StatusError can read its body.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = &retryLogger{}

	return &Client{
		httpClient:     retryClient.StandardClient(),
		transferClient: transferClient,
		baseURL:        strings.TrimSuffix(strings.TrimSpace(cfg.ServerURL), "/"),
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string) (*nethttp.Response, error) {
	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).
			Str("class", http.ErrorTypeName(http.ClassifyError(err))).Msg("request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Upload sends one file as a multipart body with the single field "file".
// The body is streamed; progress (may be nil) sees bytes read from the file.
// The response body of a successful upload is ignored.
func (c *Client) Upload(ctx context.Context, f models.SelectedFile, progress ProgressFunc) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer src.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(constants.UploadFormField, f.Name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		var r io.Reader = src
		if progress != nil {
			r = &progressReader{r: src, total: f.Size, fn: progress}
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.baseURL+constants.UploadPath, pr)
	if err != nil {
		pr.Close()
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.transferClient.Do(req)
	// Unblocks the writer goroutine if the server answered before reading everything.
	pr.Close()
	if err != nil {
		return fmt.Errorf("upload %s failed: %w", f.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload %s failed: %w", f.Name, newStatusError(resp))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// ListFiles fetches the registry in backend order.
func (c *Client) ListFiles(ctx context.Context) ([]models.StoredFile, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, constants.ListPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("list files failed: %w", newStatusError(resp))
	}

	var files []models.StoredFile
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("list files failed: %w: %v", ErrMalformedResponse, err)
	}
	if files == nil {
		files = []models.StoredFile{}
	}
	return files, nil
}

// DownloadURL returns the backend download URL for name. The name is
// percent-encoded as a single path segment.
func (c *Client) DownloadURL(name string) string {
	return c.baseURL + constants.DownloadPath + url.PathEscape(name)
}

// Download streams the stored file name into w and returns the byte count.
func (c *Client) Download(ctx context.Context, name string, w io.Writer, progress ProgressFunc) (int64, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, c.DownloadURL(name), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.transferClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("download %s failed: %w", name, newStatusError(resp))
	}

	var r io.Reader = resp.Body
	if progress != nil {
		r = &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	}
	n, err := io.Copy(w, r)
	if err != nil {
		return n, fmt.Errorf("download %s interrupted: %w", name, err)
	}
	return n, nil
}

// DeleteFile removes the stored file name.
// A backend refusal returns a *StatusError carrying its {"error"} message.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	resp, err := c.doRequest(ctx, nethttp.MethodDelete, constants.DeletePath+url.PathEscape(name))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("delete %s failed: %w", name, newStatusError(resp))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Health checks that the backend answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, constants.HealthPath)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != nethttp.StatusOK {
		return newStatusError(resp)
	}
	return nil
}

type progressReader struct {
	r     io.Reader
	total int64
	done  int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.fn(p.done, p.total)
	}
	if errors.Is(err, io.EOF) && p.total < 0 {
		p.fn(p.done, p.done)
	}
	return n, err
}
