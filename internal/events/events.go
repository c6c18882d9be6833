// Package events provides a publish/subscribe bus for batch, registry and
// drop-zone events.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/filedrop/filedrop/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog EventType = "log"

	// Upload batch lifecycle
	EventBatchStarted     EventType = "batch_started"      // Placeholders rendered, nothing sent yet
	EventItemStateChanged EventType = "item_state_changed" // One item moved to a new state
	EventBatchProgress    EventType = "batch_progress"     // Aggregate progress recomputed
	EventBatchSettled     EventType = "batch_settled"      // Settle delay over, registry refreshed

	// Registry view
	EventRegistryRefreshed EventType = "registry_refreshed"
	EventRegistryFailed    EventType = "registry_failed"
	EventFileDeleted       EventType = "file_deleted"

	// Drop zone active indication toggled
	EventDropZoneActive EventType = "drop_zone_active"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	BatchID string
	Error   error
}

// BatchEvent marks the start of a batch.
type BatchEvent struct {
	BaseEvent
	BatchID string
	Total   int
}

// ItemEvent reports a per-item state change.
// FailureKind is "transport" or "backend" for failed items and empty otherwise.
type ItemEvent struct {
	BaseEvent
	BatchID     string
	Index       int
	Name        string
	Size        int64
	State       string
	Error       error
	FailureKind string
}

// ProgressEvent carries the recomputed aggregate progress.
type ProgressEvent struct {
	BaseEvent
	BatchID   string
	Completed int
	Total     int
	Status    string
}

// SettledEvent marks the end of a batch, after the settle delay.
type SettledEvent struct {
	BaseEvent
	BatchID   string
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// RegistryEvent reports the outcome of a registry refresh.
type RegistryEvent struct {
	BaseEvent
	Count int
	Error error
}

// FileEvent reports an action on one stored file.
type FileEvent struct {
	BaseEvent
	Name string
}

// DropZoneEvent reports the active indication of a drop zone.
type DropZoneEvent struct {
	BaseEvent
	Active bool
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// Events for a full subscriber are dropped and counted.
// A nil bus is valid and discards everything.
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message, batchID string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: newBase(EventLog),
		Level:     level,
		Message:   message,
		BatchID:   batchID,
		Error:     err,
	})
}

// PublishBatchStarted announces a new batch of total files.
func (eb *EventBus) PublishBatchStarted(batchID string, total int) {
	eb.Publish(&BatchEvent{
		BaseEvent: newBase(EventBatchStarted),
		BatchID:   batchID,
		Total:     total,
	})
}

// PublishItem announces a per-item state change.
func (eb *EventBus) PublishItem(ev ItemEvent) {
	ev.BaseEvent = newBase(EventItemStateChanged)
	eb.Publish(&ev)
}

// PublishProgress announces recomputed aggregate progress.
func (eb *EventBus) PublishProgress(batchID string, completed, total int, status string) {
	eb.Publish(&ProgressEvent{
		BaseEvent: newBase(EventBatchProgress),
		BatchID:   batchID,
		Completed: completed,
		Total:     total,
		Status:    status,
	})
}

// PublishSettled announces that a batch has fully settled.
func (eb *EventBus) PublishSettled(batchID string, succeeded, failed int, d time.Duration) {
	eb.Publish(&SettledEvent{
		BaseEvent: newBase(EventBatchSettled),
		BatchID:   batchID,
		Succeeded: succeeded,
		Failed:    failed,
		Duration:  d,
	})
}

// PublishRegistry announces a registry refresh outcome.
func (eb *EventBus) PublishRegistry(count int, err error) {
	t := EventRegistryRefreshed
	if err != nil {
		t = EventRegistryFailed
	}
	eb.Publish(&RegistryEvent{BaseEvent: newBase(t), Count: count, Error: err})
}

// PublishFileDeleted announces a successful delete.
func (eb *EventBus) PublishFileDeleted(name string) {
	eb.Publish(&FileEvent{BaseEvent: newBase(EventFileDeleted), Name: name})
}

// PublishDropZoneActive announces a change of the drop-zone indication.
func (eb *EventBus) PublishDropZoneActive(active bool) {
	eb.Publish(&DropZoneEvent{BaseEvent: newBase(EventDropZoneActive), Active: active})
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
