package constants

import (
	"time"
)

// Backend endpoints consumed by the client and served by the reference server.
const (
	UploadPath   = "/upload"
	ListPath     = "/files"
	DownloadPath = "/download/"
	DeletePath   = "/delete/"
	HealthPath   = "/healthz"

	// UploadFormField is the single multipart field carrying the file.
	UploadFormField = "file"
)

// Batch behaviour
const (
	// DefaultSettleDelay - pause after the last item resolves so terminal
	// statuses stay readable before the registry refresh (2 seconds)
	DefaultSettleDelay = 2 * time.Second

	// DropZoneQuietPeriod - a drop zone waits this long without new files
	// before handing the collected files to the session
	DropZoneQuietPeriod = 750 * time.Millisecond
)

// Retry configuration for list/delete calls.
// Uploads are never retried automatically.
const (
	// DefaultMaxRetries - no automatic retries unless configured
	DefaultMaxRetries = 0

	// MaxMaxRetries - upper bound accepted from config
	MaxMaxRetries = 10

	// RetryWaitMin - minimum wait between retries
	RetryWaitMin = 500 * time.Millisecond

	// RetryWaitMax - maximum wait between retries (exponential backoff caps here)
	RetryWaitMax = 15 * time.Second
)

// Event bus buffers
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// Reference server defaults
const (
	// DefaultServerAddr - listen address for `filedrop serve`
	DefaultServerAddr = ":8000"

	// DefaultServerURL - where the client looks for the backend
	DefaultServerURL = "http://localhost:8000"

	// DefaultMaxUploadSize - largest accepted upload body (10 MiB)
	DefaultMaxUploadSize = 10 * 1024 * 1024

	// DefaultUploadDir - local storage directory
	DefaultUploadDir = "uploads"

	// ShutdownTimeout - graceful shutdown budget for the server
	ShutdownTimeout = 10 * time.Second
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (60 seconds)
	HTTPTLSHandshakeTimeout = 60 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPAPITimeout - overall timeout for list/delete calls (5 minutes)
	HTTPAPITimeout = 300 * time.Second
)
