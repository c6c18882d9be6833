package models

import "fmt"

// ItemState is the lifecycle state of one file within a batch.
type ItemState string

const (
	ItemPending   ItemState = "pending"
	ItemUploading ItemState = "uploading"
	ItemSucceeded ItemState = "succeeded"
	ItemFailed    ItemState = "failed"
)

// IsTerminal reports whether the state will not change again within the batch.
func (s ItemState) IsTerminal() bool {
	return s == ItemSucceeded || s == ItemFailed
}

// DisplayText returns the human string shown next to an item in this state.
func (s ItemState) DisplayText() string {
	switch s {
	case ItemSucceeded:
		return "done"
	case ItemFailed:
		return "failed"
	default:
		return "uploading"
	}
}

// UploadItemStatus tracks one SelectedFile of the active batch.
// Index is the file's position in the batch and never changes.
type UploadItemStatus struct {
	Index       int
	Name        string
	Size        int64
	State       ItemState
	DisplayText string
}

// NewUploadItemStatus creates the pending status for the file at index.
func NewUploadItemStatus(index int, f SelectedFile) UploadItemStatus {
	return UploadItemStatus{
		Index:       index,
		Name:        f.Name,
		Size:        f.Size,
		State:       ItemPending,
		DisplayText: ItemPending.DisplayText(),
	}
}

// SetState moves the item to a new state and refreshes its display text.
func (s *UploadItemStatus) SetState(state ItemState) {
	s.State = state
	s.DisplayText = state.DisplayText()
}

// StatusAllComplete is shown once every item of the batch has resolved.
const StatusAllComplete = "all uploads complete"

// BatchProgress is the aggregate progress over the current batch.
// Completed counts resolved items, successful or failed.
type BatchProgress struct {
	Completed int
	Total     int
}

// Percent returns Completed/Total as a percentage. An empty batch is 0%.
func (p BatchProgress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Done reports whether every item has resolved.
func (p BatchProgress) Done() bool {
	return p.Total > 0 && p.Completed >= p.Total
}

// StatusText renders the aggregate status line.
func (p BatchProgress) StatusText() string {
	if p.Done() {
		return StatusAllComplete
	}
	return fmt.Sprintf("uploading (%d/%d)", p.Completed, p.Total)
}
