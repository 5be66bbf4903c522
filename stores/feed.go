package stores

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"nextride/models"
	"nextride/ride"
	"nextride/utils"
)

const (
	rideFeedPrefix       = "rides:feed:"
	rideRequestedChannel = "rides:requested"
)

// RideFeed broadcasts committed ride updates over per-ride Redis channels
// so every API instance sees every change regardless of which one wrote it.
type RideFeed struct {
	rdb *redis.Client

	mu        sync.Mutex
	subs      map[string]*feedSub // one active subscription per ride
	requested *feedSub            // the shared new-request broadcast
}

type feedSub struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func NewRideFeed(rdb *redis.Client) *RideFeed {
	return &RideFeed{
		rdb:  rdb,
		subs: make(map[string]*feedSub),
	}
}

var _ ride.Feed = (*RideFeed)(nil)

// PublishUpdate pushes the ride's current snapshot to its channel.
func (f *RideFeed) PublishUpdate(ctx context.Context, r *models.Ride) error {
	val, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, rideFeedPrefix+r.ID, val).Err()
}

// PublishRequested broadcasts a new open request to every listening driver
// surface.
func (f *RideFeed) PublishRequested(ctx context.Context, r *models.Ride) error {
	val, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, rideRequestedChannel, val).Err()
}

// SubscribeRequested streams newly requested rides into handler. At most one
// broadcast subscription is active per feed; subscribing again replaces it.
func (f *RideFeed) SubscribeRequested(handler func(*models.Ride)) {
	f.mu.Lock()
	if f.requested != nil {
		f.requested.cancel()
		f.requested.pubsub.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	pubsub := f.rdb.Subscribe(ctx, rideRequestedChannel)
	f.requested = &feedSub{pubsub: pubsub, cancel: cancel}
	f.mu.Unlock()

	utils.SafeGo(func() {
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var r models.Ride
				if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
					utils.Logger.Error("Malformed ride request payload", zap.Error(err))
					continue
				}
				handler(&r)
			case <-ctx.Done():
				return
			}
		}
	})
}

// Subscribe starts streaming updates for a ride into handler. A second
// subscription for the same ride replaces the first; Unsubscribe or a
// closed channel ends the stream.
func (f *RideFeed) Subscribe(rideID string, handler func(*models.Ride)) {
	f.mu.Lock()
	if old, ok := f.subs[rideID]; ok {
		old.cancel()
		old.pubsub.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	pubsub := f.rdb.Subscribe(ctx, rideFeedPrefix+rideID)
	f.subs[rideID] = &feedSub{pubsub: pubsub, cancel: cancel}
	f.mu.Unlock()

	utils.SafeGo(func() {
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var r models.Ride
				if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
					utils.Logger.Error("Malformed ride feed payload",
						zap.String("rideId", rideID), zap.Error(err))
					continue
				}
				handler(&r)
			case <-ctx.Done():
				return
			}
		}
	})
}

// Unsubscribe tears down the ride's stream. No-op when nothing is active.
func (f *RideFeed) Unsubscribe(rideID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[rideID]; ok {
		sub.cancel()
		sub.pubsub.Close()
		delete(f.subs, rideID)
	}
}

// Close tears down every active stream, for shutdown.
func (f *RideFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, sub := range f.subs {
		sub.cancel()
		sub.pubsub.Close()
		delete(f.subs, id)
	}
	if f.requested != nil {
		f.requested.cancel()
		f.requested.pubsub.Close()
		f.requested = nil
	}
}
