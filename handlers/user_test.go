package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextride/models"
	"nextride/nav"
	"nextride/ride"
)

// stubRideStore serves a single ride from memory, enough to drive handler
// flows through the lifecycle service without a database.
type stubRideStore struct {
	ride models.Ride
}

var _ ride.Store = (*stubRideStore)(nil)

func (s *stubRideStore) Create(ctx context.Context, r *models.Ride) (string, error) {
	return s.ride.ID, nil
}

func (s *stubRideStore) Get(ctx context.Context, id string) (*models.Ride, error) {
	if id != s.ride.ID {
		return nil, ride.ErrNotFound
	}
	r := s.ride
	return &r, nil
}

func (s *stubRideStore) Accept(ctx context.Context, rideID, driverID, driverName string, at time.Time) error {
	return ride.ErrConflict
}

func (s *stubRideStore) UpdateStatus(ctx context.Context, rideID string, from, to models.RideStatus, at time.Time) error {
	if rideID != s.ride.ID {
		return ride.ErrNotFound
	}
	if s.ride.Status != from {
		return ride.ErrConflict
	}
	s.ride.Status = to
	return nil
}

func (s *stubRideStore) SetRating(ctx context.Context, rideID string, rating float64, review string) error {
	return nil
}

func (s *stubRideStore) ListAvailable(ctx context.Context, limit int) ([]models.Ride, error) {
	return nil, nil
}

func (s *stubRideStore) ListForUser(ctx context.Context, userID, role string, limit int) ([]models.Ride, error) {
	return nil, nil
}

func (s *stubRideStore) UpdateDriverPosition(ctx context.Context, rideID string, pos models.Coordinates, at time.Time) error {
	return nil
}

func TestCancelRide_StopsNavigationSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubRideStore{ride: models.Ride{
		ID:         "ride-1",
		CustomerID: "user-1",
		Status:     models.StatusAccepted,
	}}

	manager := nav.NewManager()
	manager.Start("ride-1", &nav.Route{
		DistanceKm:  1.4,
		DurationMin: 4,
		Coordinates: []models.Coordinates{
			{Latitude: 37.7749, Longitude: -122.4194},
			{Latitude: 37.7849, Longitude: -122.4094},
		},
	}, models.Coordinates{Latitude: 37.7849, Longitude: -122.4094})
	require.NotNil(t, manager.Get("ride-1"))

	h := &UserHandler{
		Rides: ride.NewService(store, nil, nil, nil),
		Nav:   manager,
	}

	r := gin.New()
	r.POST("/ride/cancel", func(c *gin.Context) {
		c.Set("user", &models.User{ID: "user-1"})
		h.CancelRide(c)
	})

	body, _ := json.Marshal(gin.H{"rideId": "ride-1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ride/cancel", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusCancelled, store.ride.Status)
	assert.Nil(t, manager.Get("ride-1"), "cancelling a ride must end its navigation session")
}

func TestCancelRide_RejectsForeignRide(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubRideStore{ride: models.Ride{
		ID:         "ride-1",
		CustomerID: "someone-else",
		Status:     models.StatusAccepted,
	}}

	h := &UserHandler{Rides: ride.NewService(store, nil, nil, nil)}

	r := gin.New()
	r.POST("/ride/cancel", func(c *gin.Context) {
		c.Set("user", &models.User{ID: "user-1"})
		h.CancelRide(c)
	})

	body, _ := json.Marshal(gin.H{"rideId": "ride-1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ride/cancel", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.StatusAccepted, store.ride.Status)
}
