package http

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	nethttp "net/http"
	"strings"
	"time"
)

// ErrorType represents different classes of errors for retry strategy
type ErrorType int

const (
	// ErrorTypeSuccess indicates operation succeeded
	ErrorTypeSuccess ErrorType = iota
	// ErrorTypeNetwork indicates network/connection issues (timeouts, connection refused, etc.)
	ErrorTypeNetwork
	// ErrorTypeRetryable indicates server errors that can be retried (500, 502, 503, throttling)
	ErrorTypeRetryable
	// ErrorTypeFatal indicates errors that should not be retried (400, 404, cancellation)
	ErrorTypeFatal
)

// ClassifyError determines the error type of a failed round trip.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSuccess
	}

	// The caller gave up; retrying cannot help.
	if errors.Is(err, context.Canceled) {
		return ErrorTypeFatal
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return ErrorTypeNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorTypeNetwork
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "tls handshake timeout") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "timeout") {
		return ErrorTypeNetwork
	}

	if strings.Contains(errStr, "throttl") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "server busy") {
		return ErrorTypeRetryable
	}

	// Unknown errors are fatal to avoid retry loops on unexpected failures.
	return ErrorTypeFatal
}

// ClassifyStatus maps an HTTP status code to an ErrorType.
func ClassifyStatus(code int) ErrorType {
	switch {
	case code >= 200 && code < 300:
		return ErrorTypeSuccess
	case code == nethttp.StatusTooManyRequests, code == nethttp.StatusRequestTimeout:
		return ErrorTypeRetryable
	case code >= 500 && code != nethttp.StatusNotImplemented:
		return ErrorTypeRetryable
	default:
		return ErrorTypeFatal
	}
}

// CheckRetry is a go-retryablehttp CheckRetry policy built on ClassifyError
// and ClassifyStatus. Whether another attempt is made still depends on the
// client's RetryMax.
func CheckRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		t := ClassifyError(err)
		return t == ErrorTypeNetwork || t == ErrorTypeRetryable, nil
	}
	if resp == nil {
		return false, nil
	}
	return ClassifyStatus(resp.StatusCode) == ErrorTypeRetryable, nil
}

// Backoff is a go-retryablehttp Backoff using CalculateBackoff.
// attemptNum starts at 0 in go-retryablehttp, so it is shifted by one.
func Backoff(min, max time.Duration, attemptNum int, _ *nethttp.Response) time.Duration {
	return CalculateBackoff(attemptNum+1, min, max)
}

// CalculateBackoff returns exponential backoff duration with full jitter
//
// Formula: random(0, min(maxDelay, initialDelay * 2^attempt))
func CalculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt <= 0 || initialDelay <= 0 {
		return 0
	}

	base := maxDelay
	// Guard the shift against overflow for large attempt counts.
	if attempt < 32 {
		if d := time.Duration(1<<uint(attempt)) * initialDelay; d < maxDelay {
			base = d
		}
	}
	if base <= 0 {
		return 0
	}

	return time.Duration(rand.Int63n(int64(base)))
}

// ErrorTypeName returns a human-readable name for an ErrorType
func ErrorTypeName(errType ErrorType) string {
	switch errType {
	case ErrorTypeSuccess:
		return "success"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeRetryable:
		return "retryable"
	case ErrorTypeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}
