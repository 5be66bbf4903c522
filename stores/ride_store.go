package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nextride/models"
	"nextride/ride"
)

// RideStore is the PostgreSQL persistence for rides. Conditional writes
// (Accept, UpdateStatus) guard on the current status in the WHERE clause,
// so concurrent writers race at the row and exactly one wins.
type RideStore struct {
	pool *pgxpool.Pool
}

func NewRideStore(pool *pgxpool.Pool) *RideStore {
	return &RideStore{pool: pool}
}

var _ ride.Store = (*RideStore)(nil)

const rideColumns = `
	id, "customerId", "customerName", "driverId", "driverName",
	"pickupLat", "pickupLng", "pickupAddress", "pickupCity", "pickupState", "pickupZip",
	"destLat", "destLng", "destAddress", "destCity", "destState", "destZip",
	"vehicleType", fare, "estimatedDuration", "paymentMethod", status,
	rating, review, "driverLat", "driverLng", "lastLocationUpdate",
	"requestedAt", "acceptedAt", "startedAt", "completedAt", "cancelledAt",
	"createdAt", "updatedAt"`

func scanRide(row pgx.Row) (*models.Ride, error) {
	var r models.Ride
	var driverLat, driverLng *float64

	err := row.Scan(
		&r.ID, &r.CustomerID, &r.CustomerName, &r.DriverID, &r.DriverName,
		&r.Pickup.Latitude, &r.Pickup.Longitude, &r.Pickup.Address, &r.Pickup.City, &r.Pickup.State, &r.Pickup.ZipCode,
		&r.Destination.Latitude, &r.Destination.Longitude, &r.Destination.Address, &r.Destination.City, &r.Destination.State, &r.Destination.ZipCode,
		&r.VehicleType, &r.Fare, &r.EstimatedDuration, &r.PaymentMethod, &r.Status,
		&r.Rating, &r.Review, &driverLat, &driverLng, &r.LastLocationUpdate,
		&r.RequestedAt, &r.AcceptedAt, &r.StartedAt, &r.CompletedAt, &r.CancelledAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverLat != nil && driverLng != nil {
		r.DriverLocation = &models.Coordinates{Latitude: *driverLat, Longitude: *driverLng}
	}
	return &r, nil
}

func (s *RideStore) Create(ctx context.Context, r *models.Ride) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO rides (
			"customerId", "customerName",
			"pickupLat", "pickupLng", "pickupAddress", "pickupCity", "pickupState", "pickupZip",
			"destLat", "destLng", "destAddress", "destCity", "destState", "destZip",
			"vehicleType", fare, "estimatedDuration", "paymentMethod", status, "requestedAt"
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		) RETURNING id`,
		r.CustomerID, r.CustomerName,
		r.Pickup.Latitude, r.Pickup.Longitude, r.Pickup.Address, r.Pickup.City, r.Pickup.State, r.Pickup.ZipCode,
		r.Destination.Latitude, r.Destination.Longitude, r.Destination.Address, r.Destination.City, r.Destination.State, r.Destination.ZipCode,
		r.VehicleType, r.Fare, r.EstimatedDuration, r.PaymentMethod, r.Status, r.RequestedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create ride: %w", err)
	}
	return id, nil
}

func (s *RideStore) Get(ctx context.Context, id string) (*models.Ride, error) {
	r, err := scanRide(s.pool.QueryRow(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: ride %s", ride.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get ride: %w", err)
	}
	return r, nil
}

// Accept is the contended write of the whole system: every driver tapping
// "accept" lands here. The WHERE clause only matches an unclaimed request,
// so the database arbitrates and the losers see zero rows.
func (s *RideStore) Accept(ctx context.Context, rideID, driverID, driverName string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rides
		SET status = $2, "driverId" = $3, "driverName" = $4, "acceptedAt" = $5, "updatedAt" = NOW()
		WHERE id = $1 AND status = $6 AND "driverId" IS NULL`,
		rideID, models.StatusAccepted, driverID, driverName, at, models.StatusRequested,
	)
	if err != nil {
		return fmt.Errorf("accept ride: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.disambiguate(ctx, rideID)
	}
	return nil
}

// timestampColumn maps a target status to the column its transition stamps.
// Arrival has no timestamp of its own.
func timestampColumn(to models.RideStatus) string {
	switch to {
	case models.StatusInProgress:
		return `"startedAt"`
	case models.StatusCompleted:
		return `"completedAt"`
	case models.StatusCancelled:
		return `"cancelledAt"`
	}
	return ""
}

func (s *RideStore) UpdateStatus(ctx context.Context, rideID string, from, to models.RideStatus, at time.Time) error {
	query := `UPDATE rides SET status = $2, "updatedAt" = NOW()`
	args := []interface{}{rideID, to, from}
	if col := timestampColumn(to); col != "" {
		query += `, ` + col + ` = $4`
		args = append(args, at)
	}
	query += ` WHERE id = $1 AND status = $3`

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update ride status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.disambiguate(ctx, rideID)
	}
	return nil
}

// disambiguate resolves a zero-row conditional write: either the ride does
// not exist (ErrNotFound) or it moved under us (ErrConflict).
func (s *RideStore) disambiguate(ctx context.Context, rideID string) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM rides WHERE id = $1)`, rideID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check ride existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: ride %s", ride.ErrNotFound, rideID)
	}
	return fmt.Errorf("%w: ride %s changed status concurrently", ride.ErrConflict, rideID)
}

func (s *RideStore) SetRating(ctx context.Context, rideID string, rating float64, review string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rides SET rating = $2, review = $3, "updatedAt" = NOW() WHERE id = $1`,
		rideID, rating, review,
	)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ride %s", ride.ErrNotFound, rideID)
	}
	return nil
}

func (s *RideStore) ListAvailable(ctx context.Context, limit int) ([]models.Ride, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE status = $1
		ORDER BY "requestedAt" DESC
		LIMIT $2`,
		models.StatusRequested, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list available rides: %w", err)
	}
	defer rows.Close()
	return collectRides(rows)
}

func (s *RideStore) ListForUser(ctx context.Context, userID, role string, limit int) ([]models.Ride, error) {
	column := `"customerId"`
	if role == "driver" {
		column = `"driverId"`
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE `+column+` = $1
		ORDER BY "createdAt" DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list rides for user: %w", err)
	}
	defer rows.Close()
	return collectRides(rows)
}

func (s *RideStore) UpdateDriverPosition(ctx context.Context, rideID string, pos models.Coordinates, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rides SET "driverLat" = $2, "driverLng" = $3, "lastLocationUpdate" = $4, "updatedAt" = NOW()
		WHERE id = $1`,
		rideID, pos.Latitude, pos.Longitude, at,
	)
	if err != nil {
		return fmt.Errorf("update driver position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ride %s", ride.ErrNotFound, rideID)
	}
	return nil
}

func collectRides(rows pgx.Rows) ([]models.Ride, error) {
	var out []models.Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
