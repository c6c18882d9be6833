package session

import (
	"github.com/filedrop/filedrop/internal/models"
)

// Phase is where a batch is in its lifecycle.
type Phase string

const (
	// PhaseUploading: items are being sent one at a time.
	PhaseUploading Phase = "uploading"
	// PhaseSettling: every item is terminal; statuses stay visible for the settle delay.
	PhaseSettling Phase = "settling"
	// PhaseSettled: the registry was refreshed and the progress UI is hidden.
	PhaseSettled Phase = "settled"
)

// BatchState is everything the progress UI shows for one batch.
// Items is index-aligned with the files passed to Start.
type BatchState struct {
	ID       string
	Items    []models.UploadItemStatus
	Progress models.BatchProgress
	Status   string
	Phase    Phase
	Visible  bool
}

func newBatchState(id string, files []models.SelectedFile) BatchState {
	items := make([]models.UploadItemStatus, len(files))
	for i, f := range files {
		items[i] = models.NewUploadItemStatus(i, f)
	}
	progress := models.BatchProgress{Total: len(files)}
	return BatchState{
		ID:       id,
		Items:    items,
		Progress: progress,
		Status:   progress.StatusText(),
		Phase:    PhaseUploading,
		Visible:  true,
	}
}

// Clone returns a copy that shares nothing with s.
func (s BatchState) Clone() BatchState {
	c := s
	c.Items = append([]models.UploadItemStatus(nil), s.Items...)
	return c
}

// Succeeded counts items in the Succeeded state.
func (s BatchState) Succeeded() int {
	n := 0
	for _, it := range s.Items {
		if it.State == models.ItemSucceeded {
			n++
		}
	}
	return n
}

// Failed counts items in the Failed state.
func (s BatchState) Failed() int {
	n := 0
	for _, it := range s.Items {
		if it.State == models.ItemFailed {
			n++
		}
	}
	return n
}

// AllTerminal reports whether every item reached Succeeded or Failed.
func (s BatchState) AllTerminal() bool {
	for _, it := range s.Items {
		if !it.State.IsTerminal() {
			return false
		}
	}
	return true
}

// resolve records the outcome of item i and recomputes the aggregate.
func (s *BatchState) resolve(i int, ok bool) {
	if ok {
		s.Items[i].SetState(models.ItemSucceeded)
	} else {
		s.Items[i].SetState(models.ItemFailed)
	}
	s.Progress.Completed++
	s.Status = s.Progress.StatusText()
	if s.Progress.Done() {
		s.Phase = PhaseSettling
	}
}
