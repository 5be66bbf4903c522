package ride

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nextride/models"
)

func TestCanTransition_Table(t *testing.T) {
	all := []models.RideStatus{
		models.StatusRequested, models.StatusAccepted, models.StatusDriverArriving,
		models.StatusInProgress, models.StatusCompleted, models.StatusCancelled,
	}

	allowed := map[[2]models.RideStatus]bool{
		{models.StatusRequested, models.StatusAccepted}:        true,
		{models.StatusRequested, models.StatusCancelled}:       true,
		{models.StatusAccepted, models.StatusDriverArriving}:   true,
		{models.StatusAccepted, models.StatusCancelled}:        true,
		{models.StatusDriverArriving, models.StatusInProgress}: true,
		{models.StatusDriverArriving, models.StatusCancelled}:  true,
		{models.StatusInProgress, models.StatusCompleted}:      true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]models.RideStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_NoCancelMidTrip(t *testing.T) {
	assert.False(t, CanTransition(models.StatusInProgress, models.StatusCancelled))
	assert.False(t, CanTransition(models.StatusCompleted, models.StatusCancelled))
}

func TestStampTransition_OneFieldPerEdge(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		to    models.RideStatus
		check func(t *testing.T, r models.Ride)
	}{
		{models.StatusAccepted, func(t *testing.T, r models.Ride) {
			assert.Equal(t, &at, r.AcceptedAt)
			assert.Nil(t, r.StartedAt)
			assert.Nil(t, r.CompletedAt)
			assert.Nil(t, r.CancelledAt)
		}},
		{models.StatusDriverArriving, func(t *testing.T, r models.Ride) {
			// Arrival at pickup has no timestamp of its own.
			assert.Nil(t, r.AcceptedAt)
			assert.Nil(t, r.StartedAt)
		}},
		{models.StatusInProgress, func(t *testing.T, r models.Ride) {
			assert.Equal(t, &at, r.StartedAt)
			assert.Nil(t, r.CompletedAt)
		}},
		{models.StatusCompleted, func(t *testing.T, r models.Ride) {
			assert.Equal(t, &at, r.CompletedAt)
			assert.Nil(t, r.CancelledAt)
		}},
		{models.StatusCancelled, func(t *testing.T, r models.Ride) {
			assert.Equal(t, &at, r.CancelledAt)
			assert.Nil(t, r.CompletedAt)
		}},
	}

	for _, tc := range cases {
		t.Run(string(tc.to), func(t *testing.T) {
			var r models.Ride
			StampTransition(&r, tc.to, at)
			tc.check(t, r)
		})
	}
}
