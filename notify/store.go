package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nextride/models"
	"nextride/ride"
)

// PGStore is the PostgreSQL notification store. Device tokens live on the
// users and drivers tables.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

var _ Store = (*PGStore)(nil)

func (s *PGStore) Insert(ctx context.Context, n *models.Notification) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO notifications ("userId", "rideId", type, title, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, "createdAt"`,
		n.UserID, n.RideID, n.Type, n.Title, n.Body,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PGStore) DeviceToken(ctx context.Context, userID, role string) (string, error) {
	table := "users"
	if role == "driver" {
		table = "drivers"
	}

	var token *string
	err := s.pool.QueryRow(ctx,
		`SELECT "notificationToken" FROM `+table+` WHERE id = $1`, userID,
	).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s %s", ride.ErrNotFound, role, userID)
	}
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", nil
	}
	return *token, nil
}

// ListForUser returns a user's notifications, newest first.
func (s *PGStore) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, "userId", "rideId", type, title, body, "isRead", "createdAt"
		FROM notifications
		WHERE "userId" = $1
		ORDER BY "createdAt" DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.RideID, &n.Type, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as seen.
func (s *PGStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET "isRead" = TRUE WHERE id = $1 AND "userId" = $2`,
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification %s", ride.ErrNotFound, notificationID)
	}
	return nil
}
