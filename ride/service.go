package ride

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nextride/models"
	"nextride/utils"
)

// Store is the persistence collaborator contract. Accept and UpdateStatus
// are conditional writes: they succeed only if the stored status still
// matches the expected one at write time, and return ErrConflict otherwise.
// The store arbitrates races; the service never takes its own locks.
type Store interface {
	Create(ctx context.Context, r *models.Ride) (string, error)
	Get(ctx context.Context, id string) (*models.Ride, error)
	Accept(ctx context.Context, rideID, driverID, driverName string, at time.Time) error
	UpdateStatus(ctx context.Context, rideID string, from, to models.RideStatus, at time.Time) error
	SetRating(ctx context.Context, rideID string, rating float64, review string) error
	ListAvailable(ctx context.Context, limit int) ([]models.Ride, error)
	ListForUser(ctx context.Context, userID, role string, limit int) ([]models.Ride, error)
	UpdateDriverPosition(ctx context.Context, rideID string, pos models.Coordinates, at time.Time) error
}

// Notifier is the notification-dispatch collaborator. Delivery is
// at-most-once; the service never retries a send.
type Notifier interface {
	Send(ctx context.Context, p models.NotificationPayload) error
}

// DriverFinder locates online drivers near a pickup point, for fanning out
// new ride requests.
type DriverFinder interface {
	NearbyDriverIDs(ctx context.Context, origin models.Coordinates, radiusKm float64) ([]string, error)
}

// Feed receives every committed ride change for live subscribers. New
// requests additionally go out on a shared broadcast so online drivers see
// them without subscribing to individual rides.
type Feed interface {
	PublishUpdate(ctx context.Context, r *models.Ride) error
	PublishRequested(ctx context.Context, r *models.Ride) error
}

// Service owns the ride status machine and the fare/duration quote. It holds
// no per-ride state of its own: every mutation goes through the store's
// conditional writes.
type Service struct {
	store    Store
	notifier Notifier
	finder   DriverFinder
	feed     Feed

	// RequestRadiusKm bounds the driver fan-out for new requests.
	RequestRadiusKm float64
}

func NewService(store Store, notifier Notifier, finder DriverFinder, feed Feed) *Service {
	return &Service{
		store:           store,
		notifier:        notifier,
		finder:          finder,
		feed:            feed,
		RequestRadiusKm: 5.0,
	}
}

// CreateRequestInput carries everything the booking flow knows about a new ride.
type CreateRequestInput struct {
	CustomerID    string
	CustomerName  string
	Pickup        models.Location
	Destination   models.Location
	VehicleType   models.VehicleType
	PaymentMethod string
}

func validLocation(l models.Location) bool {
	// A zero/zero pair is treated as unset; it is open ocean, not a pickup.
	return l.Latitude != 0 || l.Longitude != 0
}

// CreateRequest quotes the fare and duration, persists the ride in the
// requested state, and fans the request out to nearby online drivers.
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.Ride, error) {
	if in.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrValidation)
	}
	if !validLocation(in.Pickup) {
		return nil, fmt.Errorf("%w: pickup location is missing coordinates", ErrValidation)
	}
	if !validLocation(in.Destination) {
		return nil, fmt.Errorf("%w: destination is missing coordinates", ErrValidation)
	}
	if !in.VehicleType.Valid() {
		return nil, fmt.Errorf("%w: unknown vehicle type %q", ErrValidation, in.VehicleType)
	}

	now := time.Now().UTC()
	r := &models.Ride{
		CustomerID:        in.CustomerID,
		CustomerName:      in.CustomerName,
		Pickup:            in.Pickup,
		Destination:       in.Destination,
		VehicleType:       in.VehicleType,
		Fare:              EstimateFare(in.Pickup.Coords(), in.Destination.Coords(), in.VehicleType),
		EstimatedDuration: EstimateDuration(in.Pickup.Coords(), in.Destination.Coords()),
		PaymentMethod:     in.PaymentMethod,
		Status:            models.StatusRequested,
		RequestedAt:       now,
	}

	id, err := s.store.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	r.ID = id

	s.notifyNearbyDrivers(ctx, r)
	s.publish(ctx, r)
	if s.feed != nil {
		if err := s.feed.PublishRequested(ctx, r); err != nil {
			utils.Logger.Error("Ride request broadcast failed", zap.String("rideId", r.ID), zap.Error(err))
		}
	}

	return r, nil
}

// Get returns the ride by ID.
func (s *Service) Get(ctx context.Context, rideID string) (*models.Ride, error) {
	return s.store.Get(ctx, rideID)
}

// Available lists open requests for drivers, newest first.
func (s *Service) Available(ctx context.Context, limit int) ([]models.Ride, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListAvailable(ctx, limit)
}

// History lists a user's rides, newest first. Role selects whether the user
// is matched as customer or driver.
func (s *Service) History(ctx context.Context, userID, role string, limit int) ([]models.Ride, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListForUser(ctx, userID, role, limit)
}

// Accept attaches a driver to a requested ride. The store performs a
// conditional write, so when two drivers race exactly one wins; the loser
// gets ErrConflict, which callers surface as "ride no longer available".
func (s *Service) Accept(ctx context.Context, rideID, driverID, driverName string) (*models.Ride, error) {
	if driverID == "" {
		return nil, fmt.Errorf("%w: driver id is required", ErrValidation)
	}

	if err := s.store.Accept(ctx, rideID, driverID, driverName, time.Now().UTC()); err != nil {
		return nil, err
	}

	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, models.NotificationPayload{
		RideID: r.ID,
		Type:   models.NotifyRideAccepted,
		UserID: r.CustomerID,
		Role:   "customer",
		Title:  "🚗 Driver Found!",
		Body:   fmt.Sprintf("%s is on the way to pick you up", driverName),
	})
	s.publish(ctx, r)

	return r, nil
}

// UpdateStatus advances the ride along the lifecycle. The requested edge is
// checked against the transition table first (ErrInvalidTransition), then
// applied conditionally against the status the ride had when read
// (ErrConflict if it moved in between). Exactly one timestamp is stamped.
func (s *Service) UpdateStatus(ctx context.Context, rideID string, to models.RideStatus) (*models.Ride, error) {
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if to == models.StatusAccepted {
		// Acceptance carries driver identity and must go through Accept.
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}
	if !CanTransition(r.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}

	now := time.Now().UTC()
	if err := s.store.UpdateStatus(ctx, rideID, r.Status, to, now); err != nil {
		return nil, err
	}

	from := r.Status
	r.Status = to
	StampTransition(r, to, now)

	s.notifyTransition(ctx, r, from)
	s.publish(ctx, r)

	return r, nil
}

// Cancel aborts a ride on behalf of the customer or the system. Only
// pre-trip statuses are cancellable; the transition table enforces that.
func (s *Service) Cancel(ctx context.Context, rideID string) (*models.Ride, error) {
	return s.UpdateStatus(ctx, rideID, models.StatusCancelled)
}

// Rate records the customer's post-trip rating and optional review.
func (s *Service) Rate(ctx context.Context, rideID string, rating float64, review string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating %.1f outside 1-5", ErrValidation, rating)
	}

	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return err
	}
	if r.Status != models.StatusCompleted {
		return fmt.Errorf("%w: ride is %s, only completed rides can be rated", ErrInvalidTransition, r.Status)
	}

	return s.store.SetRating(ctx, rideID, rating, review)
}

// RecordDriverPosition writes the driver's live position onto the active
// ride so subscribed customers can track it.
func (s *Service) RecordDriverPosition(ctx context.Context, rideID string, pos models.Coordinates) error {
	return s.store.UpdateDriverPosition(ctx, rideID, pos, time.Now().UTC())
}

// notifyTransition maps a committed transition to its notification side
// effect, per the lifecycle table. Acceptance is notified in Accept.
func (s *Service) notifyTransition(ctx context.Context, r *models.Ride, from models.RideStatus) {
	driverName := "Your driver"
	if r.DriverName != nil && *r.DriverName != "" {
		driverName = *r.DriverName
	}

	switch r.Status {
	case models.StatusDriverArriving:
		s.notify(ctx, models.NotificationPayload{
			RideID: r.ID, Type: models.NotifyDriverArriving, UserID: r.CustomerID, Role: "customer",
			Title: "📍 Driver Arriving",
			Body:  fmt.Sprintf("%s has arrived at the pickup location", driverName),
		})
	case models.StatusInProgress:
		s.notify(ctx, models.NotificationPayload{
			RideID: r.ID, Type: models.NotifyRideStarted, UserID: r.CustomerID, Role: "customer",
			Title: "🛣️ Ride Started",
			Body:  "Your ride has started. Enjoy your trip!",
		})
	case models.StatusCompleted:
		s.notify(ctx, models.NotificationPayload{
			RideID: r.ID, Type: models.NotifyRideCompleted, UserID: r.CustomerID, Role: "customer",
			Title: "✅ Ride Completed",
			Body:  "You have reached your destination. Thanks for riding with us!",
		})
	case models.StatusCancelled:
		// Only an assigned driver cares; an unmatched request dies quietly.
		if from != models.StatusRequested && r.DriverID != nil && *r.DriverID != "" {
			s.notify(ctx, models.NotificationPayload{
				RideID: r.ID, Type: models.NotifyRideCancelled, UserID: *r.DriverID, Role: "driver",
				Title: "❌ Ride Cancelled",
				Body:  fmt.Sprintf("%s has cancelled the ride", r.CustomerName),
			})
		}
	}
}

func (s *Service) notifyNearbyDrivers(ctx context.Context, r *models.Ride) {
	if s.finder == nil {
		return
	}
	driverIDs, err := s.finder.NearbyDriverIDs(ctx, r.Pickup.Coords(), s.RequestRadiusKm)
	if err != nil {
		utils.Logger.Error("Failed to find nearby drivers", zap.String("rideId", r.ID), zap.Error(err))
		return
	}

	for _, driverID := range driverIDs {
		s.notify(ctx, models.NotificationPayload{
			RideID: r.ID, Type: models.NotifyRideRequest, UserID: driverID, Role: "driver",
			Title: "🚖 New Ride Request",
			Body:  fmt.Sprintf("%s needs a ride from %s - $%.2f", r.CustomerName, r.Pickup.Address, r.Fare),
		})
	}
}

// notify delivers best-effort: a failed send is logged, never retried, and
// never fails the transition that triggered it.
func (s *Service) notify(ctx context.Context, p models.NotificationPayload) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, p); err != nil {
		utils.Logger.Error("Notification dispatch failed",
			zap.String("rideId", p.RideID), zap.String("type", string(p.Type)), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, r *models.Ride) {
	if s.feed == nil {
		return
	}
	if err := s.feed.PublishUpdate(ctx, r); err != nil {
		utils.Logger.Error("Ride feed publish failed", zap.String("rideId", r.ID), zap.Error(err))
	}
}
