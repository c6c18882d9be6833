package notify

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/filedrop/filedrop/internal/events"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (r *recorder) send(title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return r.err
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func newTestDesktop() (*Desktop, *recorder) {
	r := &recorder{}
	d := NewDesktop(nil)
	d.send = r.send
	return d, r
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestBatchSettled(t *testing.T) {
	tests := []struct {
		succeeded, failed int
		want              string
	}{
		{2, 0, "Uploaded 2 files."},
		{0, 1, "1 upload failed."},
		{3, 1, "Uploaded 3 files, 1 failed."},
	}

	for _, tt := range tests {
		d, r := newTestDesktop()
		d.BatchSettled(tt.succeeded, tt.failed)
		got := r.all()
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("BatchSettled(%d, %d) sent %q, want %q", tt.succeeded, tt.failed, got, tt.want)
		}
	}

	d, r := newTestDesktop()
	d.BatchSettled(0, 0)
	if len(r.all()) != 0 {
		t.Error("Expected no notification for an empty batch")
	}
}

func TestDisabled(t *testing.T) {
	d, r := newTestDesktop()
	d.SetEnabled(false)
	d.Notify("hello")
	if len(r.all()) != 0 {
		t.Error("Expected no notification while disabled")
	}
}

func TestSendFailureIsSwallowed(t *testing.T) {
	d, r := newTestDesktop()
	r.err = errors.New("no D-Bus session")
	d.Notify(strings.Repeat("x", 500))
	got := r.all()
	if len(got) != 1 || len(got[0]) != 200 {
		t.Errorf("Expected one truncated message, got %d messages", len(got))
	}
}

func TestWatch(t *testing.T) {
	d, r := newTestDesktop()
	bus := events.NewEventBus(0)
	wait := d.Watch(bus)

	bus.PublishSettled("b1", 1, 0, 0)
	bus.PublishFileDeleted("ignored.txt")
	bus.Close()
	wait()

	got := r.all()
	if len(got) != 1 || got[0] != "Uploaded 1 file." {
		t.Errorf("Watch sent %q", got)
	}
}
