package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
)

// ErrMalformedResponse indicates a 2xx response whose body could not be decoded.
// It is a transport-class failure: the backend's intent is unknown.
var ErrMalformedResponse = errors.New("malformed response")

// Failure kinds reported in logs and events. The UI does not distinguish them.
const (
	FailureTransport = "transport"
	FailureBackend   = "backend"
)

// StatusError is a backend-reported failure: a non-2xx response, with the
// message from a JSON {"error": "..."} body when one was present.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, nethttp.StatusText(e.StatusCode))
}

// newStatusError reads at most 64 KiB of body looking for {"error": "..."}.
func newStatusError(resp *nethttp.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return se
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		se.Message = strings.TrimSpace(payload.Error)
	}
	return se
}

// BackendMessage returns the backend-provided error message carried by err.
func BackendMessage(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message, true
	}
	return "", false
}

// IsTransportError reports whether err is a transport failure: the network
// call failed or the response could not be understood.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	return !errors.As(err, &se)
}

// FailureKind classifies err as FailureTransport or FailureBackend.
// A nil error has no kind.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTransportError(err):
		return FailureTransport
	default:
		return FailureBackend
	}
}
