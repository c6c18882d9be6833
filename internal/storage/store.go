// Package storage holds the files served by the reference backend.
//
// Every backend keeps a flat namespace: one object per file name, no
// directories. Listing order is whatever the backend returns.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/models"
	"github.com/filedrop/filedrop/internal/validation"
)

var (
	// ErrNotFound is returned by Open and Delete for an unknown name.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidName is returned for names that cannot be stored.
	ErrInvalidName = errors.New("invalid file name")
)

// Store is an object store keyed by file name.
type Store interface {
	// Put stores r under name, replacing any existing file.
	Put(ctx context.Context, name string, r io.Reader, size int64) error

	// List returns every stored file.
	List(ctx context.Context) ([]models.StoredFile, error)

	// Open returns the content of name and its size.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)

	// Delete removes name.
	Delete(ctx context.Context, name string) error
}

// CleanName reduces an uploaded file name to its base name.
// Path components from either separator style are stripped.
func CleanName(name string) (string, error) {
	base, err := validation.BaseName(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return base, nil
}

// New opens the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return NewLocalStore(cfg.Local.Dir)
	case "minio":
		return NewMinIOStore(ctx, cfg.MinIO)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	case "azure":
		return NewAzureStore(cfg.Azure)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// prefixed maps names to object keys under an optional prefix.
type prefixed string

func newPrefixed(p string) prefixed {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return prefixed(p + "/")
}

func (p prefixed) key(name string) string { return string(p) + name }

// name returns the file name for key, or false for keys outside the prefix
// or in a nested "directory".
func (p prefixed) name(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, string(p))
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
