package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"nextride/models"
	"nextride/ride"
)

const (
	quoteKeyPrefix = "quotes:"

	// A quote holds its price for the standard booking window.
	quoteTTL = 15 * time.Minute
)

// Quote is a priced itinerary the customer can book from, frozen for the
// TTL so the fare cannot drift between the estimate screen and booking.
type Quote struct {
	ID                string             `json:"id"`
	CustomerID        string             `json:"customerId"`
	Pickup            models.Location    `json:"pickup"`
	Destination       models.Location    `json:"destination"`
	VehicleType       models.VehicleType `json:"vehicleType"`
	Fare              float64            `json:"fare"`
	EstimatedDuration int                `json:"estimatedDuration"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// QuoteCache keeps quotes in Redis under a random ID.
type QuoteCache struct {
	rdb *redis.Client
}

func NewQuoteCache(rdb *redis.Client) *QuoteCache {
	return &QuoteCache{rdb: rdb}
}

// Put stores the quote and returns its ID.
func (c *QuoteCache) Put(ctx context.Context, q Quote) (string, error) {
	q.ID = uuid.NewString()
	q.CreatedAt = time.Now().UTC()

	val, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, quoteKeyPrefix+q.ID, val, quoteTTL).Err(); err != nil {
		return "", err
	}
	return q.ID, nil
}

// Get returns the quote, or ErrNotFound once it expired.
func (c *QuoteCache) Get(ctx context.Context, id string) (*Quote, error) {
	val, err := c.rdb.Get(ctx, quoteKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: quote %s expired or unknown", ride.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var q Quote
	if err := json.Unmarshal([]byte(val), &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Consume fetches and deletes the quote so one quote books one ride.
func (c *QuoteCache) Consume(ctx context.Context, id string) (*Quote, error) {
	q, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.rdb.Del(ctx, quoteKeyPrefix+id)
	return q, nil
}
