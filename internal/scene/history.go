// internal/scene/history.go
package scene

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/simforge/studio3d/internal/models"
)

// DefaultHistoryLimit bounds the prompt history.
const DefaultHistoryLimit = 50

// HistoryLog is the append-only, capacity-bounded record of prompt
// round-trips, most recent first.
type HistoryLog struct {
	mu      sync.Mutex
	limit   int
	entries []models.PromptHistoryEntry
}

// NewHistoryLog creates a log keeping at most limit entries.
func NewHistoryLog(limit int) *HistoryLog {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryLog{limit: limit}
}

// Add records one prompt round-trip and returns the stored entry.
func (h *HistoryLog) Add(response models.ActionResponse) models.PromptHistoryEntry {
	entry := models.PromptHistoryEntry{
		ID:        uuid.NewString(),
		Prompt:    response.OriginalPrompt,
		Response:  response,
		Timestamp: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]models.PromptHistoryEntry{entry}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	return entry
}

// Entries returns a copy of the log, newest first.
func (h *HistoryLog) Entries() []models.PromptHistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.PromptHistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of stored entries.
func (h *HistoryLog) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Clear empties the log.
func (h *HistoryLog) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
