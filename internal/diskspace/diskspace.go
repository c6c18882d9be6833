// Package diskspace checks free space before a file is written.
package diskspace

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Margin is added on top of the requested size to leave room for
// filesystem overhead.
const Margin = 1 << 20

// InsufficientSpaceError indicates that there is not enough disk space available.
type InsufficientSpaceError struct {
	Dir            string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space in %s: need %s, have %s available",
		e.Dir, humanize.IBytes(uint64(e.RequiredBytes)), humanize.IBytes(uint64(e.AvailableBytes)))
}

// Check returns an *InsufficientSpaceError when the filesystem holding dir
// cannot take size more bytes plus Margin. When free space cannot be
// determined the write is allowed to proceed and fail on its own.
func Check(dir string, size int64) error {
	if size <= 0 {
		return nil
	}
	avail, err := Available(dir)
	if err != nil {
		return nil
	}
	required := size + Margin
	if avail < required {
		return &InsufficientSpaceError{Dir: dir, RequiredBytes: required, AvailableBytes: avail}
	}
	return nil
}

// Available returns the bytes available to the current user on the
// filesystem holding dir. dir must exist.
func Available(dir string) (int64, error) {
	n, err := available(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to get free space for %s: %w", dir, err)
	}
	return n, nil
}

// IsInsufficientSpace reports whether err is or wraps an InsufficientSpaceError.
func IsInsufficientSpace(err error) bool {
	var e *InsufficientSpaceError
	return errors.As(err, &e)
}
