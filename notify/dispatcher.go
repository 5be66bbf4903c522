// Package notify persists and delivers notifications. The ride lifecycle
// decides when to notify and what to say; this package only records the
// message and pushes it to the recipient's device.
package notify

import (
	"context"

	"go.uber.org/zap"

	"nextride/models"
	"nextride/ride"
	"nextride/utils"
)

// Store persists notifications and resolves device tokens.
type Store interface {
	Insert(ctx context.Context, n *models.Notification) error
	DeviceToken(ctx context.Context, userID, role string) (string, error)
}

// Pusher delivers to a single device. Delivery is best-effort.
type Pusher interface {
	Push(token, title, body string, data map[string]string) error
}

// Dispatcher implements the lifecycle's notification contract: persist the
// row synchronously, push to the device off the hot path. At-most-once, no
// retries.
type Dispatcher struct {
	store Store
	push  Pusher
}

func NewDispatcher(store Store, push Pusher) *Dispatcher {
	return &Dispatcher{store: store, push: push}
}

var _ ride.Notifier = (*Dispatcher)(nil)

func (d *Dispatcher) Send(ctx context.Context, p models.NotificationPayload) error {
	rideID := p.RideID
	n := &models.Notification{
		UserID: p.UserID,
		Type:   p.Type,
		Title:  p.Title,
		Body:   p.Body,
	}
	if rideID != "" {
		n.RideID = &rideID
	}

	if err := d.store.Insert(ctx, n); err != nil {
		return err
	}

	if d.push == nil {
		return nil
	}

	// Token lookup and push happen in the background; the transition that
	// triggered this notification is already committed.
	utils.SafeGo(func() {
		token, err := d.store.DeviceToken(context.Background(), p.UserID, p.Role)
		if err != nil {
			utils.Logger.Warn("No device token for notification",
				zap.String("userId", p.UserID), zap.String("role", p.Role), zap.Error(err))
			return
		}

		data := map[string]string{"type": string(p.Type)}
		if rideID != "" {
			data["rideId"] = rideID
		}
		if err := d.push.Push(token, p.Title, p.Body, data); err != nil {
			utils.Logger.Error("Push delivery failed",
				zap.String("userId", p.UserID), zap.String("type", string(p.Type)), zap.Error(err))
		}
	})

	return nil
}
