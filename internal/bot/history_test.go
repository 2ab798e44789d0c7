package bot

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_RecordKeepsOrder(t *testing.T) {
	h := NewHistory()

	h.Record(ActionInitial, "holding 2025-06-01")
	h.Record(ActionError, "connection reset")
	h.Record(ActionBooked, "2025-05-20 10:30 at facility 89")

	entries := h.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, ActionInitial, entries[0].Action)
	assert.Equal(t, ActionError, entries[1].Action)
	assert.Equal(t, ActionBooked, entries[2].Action)

	for _, e := range entries {
		assert.NotZero(t, e.ID, "every entry gets its own id")
		assert.False(t, e.At.IsZero())
	}
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestHistory_EntriesReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.Record(ActionInitial, "holding 2025-06-01")

	entries := h.Entries()
	entries[0].Detail = "mutated"

	assert.Equal(t, "holding 2025-06-01", h.Entries()[0].Detail)
}

func TestHistory_Count(t *testing.T) {
	h := NewHistory()
	h.Record(ActionInitial, "holding 2025-06-01")
	h.Record(ActionError, "one")
	h.Record(ActionError, "two")

	assert.Equal(t, 1, h.Count(ActionInitial))
	assert.Equal(t, 2, h.Count(ActionError))
	assert.Equal(t, 0, h.Count(ActionBooked))
}

func TestHistory_ConcurrentRecords(t *testing.T) {
	h := NewHistory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Record(ActionError, fmt.Sprintf("worker %d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, h.Entries(), 20)
	assert.Equal(t, 20, h.Count(ActionError))
}
