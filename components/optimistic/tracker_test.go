package optimistic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID     string
	Status string
}

func TestTrackerConfirm(t *testing.T) {
	tr := NewTracker[string, order]()
	before := order{ID: "o1", Status: "pending"}

	require.NoError(t, tr.Begin("o1", before, order{ID: "o1", Status: "confirmed"}))
	assert.Equal(t, Pending, tr.Phase("o1"))

	var inflight ErrInFlight
	assert.ErrorAs(t, tr.Begin("o1", before, before), &inflight)

	got, ok := tr.Confirm("o1", order{ID: "o1", Status: "processing"})
	require.True(t, ok)
	assert.Equal(t, "processing", got.Status)
	assert.Equal(t, Confirmed, tr.Phase("o1"))
}

func TestTrackerFailRevertsToSnapshot(t *testing.T) {
	tr := NewTracker[string, order]()
	before := order{ID: "o1", Status: "pending"}
	boom := errors.New("fetch failed")

	got, err := tr.Run("o1", before, order{ID: "o1", Status: "rejected"}, func() (order, error) {
		assert.Equal(t, Pending, tr.Phase("o1"))
		return order{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, got)

	entry, ok := tr.Get("o1")
	require.True(t, ok)
	assert.Equal(t, Reverted, entry.Phase)
	assert.Equal(t, before, entry.Current)
	assert.ErrorIs(t, entry.Err, boom)

	_, ok = tr.Fail("o1", boom)
	assert.False(t, ok)
}

func TestTrackerOverlay(t *testing.T) {
	tr := NewTracker[string, order]()
	rows := []order{{ID: "a", Status: "pending"}, {ID: "b", Status: "pending"}}
	require.NoError(t, tr.Begin("a", rows[0], order{ID: "a", Status: "confirmed"}))

	out := tr.Overlay(rows, func(o order) string { return o.ID })
	assert.Equal(t, "confirmed", out[0].Status)
	assert.Equal(t, "pending", out[1].Status)
	assert.Equal(t, "pending", rows[0].Status)

	tr.Forget("a")
	assert.Equal(t, Pending, tr.Phase("a"))
	tr.Fail("a", nil)
	tr.Forget("a")
	assert.Equal(t, Idle, tr.Phase("a"))
	assert.Equal(t, "idle", Idle.String())
}
