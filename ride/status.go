package ride

import (
	"time"

	"nextride/models"
)

// transitions is the full edge set of the ride status machine. Cancellation
// is reachable until the trip starts; nothing leaves a terminal status.
var transitions = map[models.RideStatus][]models.RideStatus{
	models.StatusRequested:      {models.StatusAccepted, models.StatusCancelled},
	models.StatusAccepted:       {models.StatusDriverArriving, models.StatusCancelled},
	models.StatusDriverArriving: {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress:     {models.StatusCompleted},
	models.StatusCompleted:      {},
	models.StatusCancelled:      {},
}

// CanTransition reports whether the edge from -> to exists in the lifecycle.
func CanTransition(from, to models.RideStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StampTransition sets the timestamp that belongs to the transition into the
// given status. Each field is written exactly once, on the transition that
// owns it; a status with no timestamp of its own stamps nothing.
func StampTransition(r *models.Ride, to models.RideStatus, at time.Time) {
	switch to {
	case models.StatusAccepted:
		r.AcceptedAt = &at
	case models.StatusInProgress:
		r.StartedAt = &at
	case models.StatusCompleted:
		r.CompletedAt = &at
	case models.StatusCancelled:
		r.CancelledAt = &at
	}
}
