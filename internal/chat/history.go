package chat

import "github.com/strrl/llmchat/pkg/models"

// History is a sliding window over the most recent conversation entries.
// Once the window is full the oldest entries are dropped first.
type History struct {
	limit   int
	entries []models.Entry
}

// NewHistory creates a history keeping at most limit entries
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 1
	}
	return &History{limit: limit}
}

// Append adds entries in order and trims the window
func (h *History) Append(entries ...models.Entry) {
	h.entries = append(h.entries, entries...)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append([]models.Entry(nil), h.entries[over:]...)
	}
}

// Entries returns a copy of the window, oldest first. Never nil, so it
// encodes as an empty JSON array.
func (h *History) Entries() []models.Entry {
	out := make([]models.Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Limit() int {
	return h.limit
}
