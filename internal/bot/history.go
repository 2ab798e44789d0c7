package bot

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action classifies a history entry.
type Action string

const (
	ActionInitial Action = "initial"
	ActionBooked  Action = "booked"
	ActionError   Action = "error"
)

// Entry is one record of something the run did or saw.
type Entry struct {
	ID     uuid.UUID
	At     time.Time
	Action Action
	Detail string
}

// History is the in-memory, append-only run log. It is never trimmed while
// the process lives; the shutdown report reads it back. Asynchronous
// bookings append from their own goroutine, hence the lock.
type History struct {
	mu      sync.Mutex
	entries []Entry
}

func NewHistory() *History {
	return &History{}
}

// Record appends one entry and returns it.
func (h *History) Record(action Action, detail string) Entry {
	e := Entry{
		ID:     uuid.New(),
		At:     time.Now(),
		Action: action,
		Detail: detail,
	}
	h.mu.Lock()
	h.entries = append(h.entries, e)
	h.mu.Unlock()
	return e
}

// Entries returns a copy of the log in append order.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Count tallies the entries recorded for one action.
func (h *History) Count(action Action) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}
