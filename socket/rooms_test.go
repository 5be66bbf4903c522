package socket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomRoster_FirstAndLastWatcher(t *testing.T) {
	r := newRoomRoster()

	assert.True(t, r.join("s1", "ride-1"), "first watcher opens the feed")
	assert.False(t, r.join("s2", "ride-1"))
	assert.False(t, r.join("s1", "ride-1"), "duplicate join is not a first watcher")

	assert.False(t, r.leave("s1", "ride-1"))
	assert.True(t, r.leave("s2", "ride-1"), "last watcher out closes the feed")
	assert.False(t, r.leave("s2", "ride-1"), "leave after empty is a no-op")
	assert.False(t, r.leave("s9", "never-joined"))
}

func TestRoomRoster_DropReleasesOnlyUnwatchedRides(t *testing.T) {
	r := newRoomRoster()
	r.join("s1", "ride-1")
	r.join("s1", "ride-2")
	r.join("s2", "ride-2")

	released := r.drop("s1")
	assert.ElementsMatch(t, []string{"ride-1"}, released, "ride-2 still has a watcher")
	assert.Empty(t, r.drop("s1"), "drop is idempotent")

	assert.ElementsMatch(t, []string{"ride-2"}, r.drop("s2"))
}

func TestRoomRoster_ReleaseForgetsRide(t *testing.T) {
	r := newRoomRoster()
	r.join("s1", "ride-1")
	r.release("ride-1")

	assert.False(t, r.leave("s1", "ride-1"))
	assert.Empty(t, r.drop("s1"))
	assert.True(t, r.join("s2", "ride-1"), "a released ride starts fresh")
}
