// Package notify sends desktop notifications for unattended uploads.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/beeep"

	"github.com/filedrop/filedrop/internal/events"
	"github.com/filedrop/filedrop/internal/format"
	"github.com/filedrop/filedrop/internal/logging"
)

const title = "filedrop"

// Desktop shows notices as desktop notifications. It satisfies
// registry.Notifier.
type Desktop struct {
	logger  *logging.Logger
	enabled atomic.Bool

	// send is replaced in tests
	send func(title, message string) error
}

// NewDesktop creates an enabled desktop notifier.
func NewDesktop(logger *logging.Logger) *Desktop {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	d := &Desktop{logger: logger, send: beeepNotify}
	d.enabled.Store(true)
	return d
}

func beeepNotify(title, message string) error {
	// Windows toast, macOS notification center, D-Bus on Linux
	return beeep.Notify(title, message, "")
}

// SetEnabled enables or disables notifications.
func (d *Desktop) SetEnabled(enabled bool) {
	d.enabled.Store(enabled)
}

// Notify shows message. Failures to reach the desktop are logged only.
func (d *Desktop) Notify(message string) {
	if !d.enabled.Load() {
		return
	}
	if err := d.send(title, truncate(message, 200)); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to send desktop notification")
	}
}

// BatchSettled announces the outcome of a finished batch.
func (d *Desktop) BatchSettled(succeeded, failed int) {
	switch {
	case succeeded+failed == 0:
		return
	case failed == 0:
		d.Notify(fmt.Sprintf("Uploaded %s.", format.Count(succeeded, "file")))
	case succeeded == 0:
		d.Notify(fmt.Sprintf("%s failed.", format.Count(failed, "upload")))
	default:
		d.Notify(fmt.Sprintf("Uploaded %s, %d failed.", format.Count(succeeded, "file"), failed))
	}
}

// Watch notifies for every settled batch on bus until bus is closed.
// The returned func blocks until the last notification is sent.
func (d *Desktop) Watch(bus *events.EventBus) (wait func()) {
	ch := bus.Subscribe(events.EventBatchSettled)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range ch {
			if e, ok := ev.(*events.SettledEvent); ok {
				d.BatchSettled(e.Succeeded, e.Failed)
			}
		}
	}()
	return wg.Wait
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
