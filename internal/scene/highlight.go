// internal/scene/highlight.go
package scene

import (
	"time"
)

// HighlightScheduler tracks pending highlight reverts as a deadline table
// keyed by object id. Re-highlighting an object replaces its entry and
// restarts the clock; removing the object drops the entry so an expired
// task can never revive a deleted object's fields.
//
// Like the camera engine it is driven cooperatively by the state owner and
// is not safe for concurrent use.
type HighlightScheduler struct {
	deadlines map[string]time.Time
}

// NewHighlightScheduler creates an empty scheduler.
func NewHighlightScheduler() *HighlightScheduler {
	return &HighlightScheduler{deadlines: make(map[string]time.Time)}
}

// Schedule arms (or re-arms) the revert for the object.
func (h *HighlightScheduler) Schedule(objectID string, duration time.Duration, now time.Time) {
	h.deadlines[objectID] = now.Add(duration)
}

// Cancel drops the pending revert for the object, if any.
func (h *HighlightScheduler) Cancel(objectID string) {
	delete(h.deadlines, objectID)
}

// CancelAll drops every pending revert.
func (h *HighlightScheduler) CancelAll() {
	h.deadlines = make(map[string]time.Time)
}

// Pending reports whether the object has an armed revert.
func (h *HighlightScheduler) Pending(objectID string) bool {
	_, ok := h.deadlines[objectID]
	return ok
}

// Expired returns the ids whose deadline has passed and removes them from
// the table. The caller flips the highlight flag for ids that still exist;
// ids of removed objects simply drop out.
func (h *HighlightScheduler) Expired(now time.Time) []string {
	var due []string
	for id, deadline := range h.deadlines {
		if !now.Before(deadline) {
			due = append(due, id)
			delete(h.deadlines, id)
		}
	}
	return due
}
