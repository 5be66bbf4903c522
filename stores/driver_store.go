// Package stores holds the persistence layer: rides in PostgreSQL, driver
// presence and short-lived booking state in Redis.
package stores

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"nextride/models"
	"nextride/ride"
)

const (
	driverGeoKey        = "drivers:geo"
	driverDataKeyPrefix = "drivers:data:"

	// Presence expires on its own so a crashed driver app stops
	// receiving dispatches within the hour.
	driverPresenceTTL = time.Hour
)

// DriverPresence is what the dispatch path knows about an online driver.
type DriverPresence struct {
	DriverID    string             `json:"driverId"`
	Name        string             `json:"name"`
	VehicleType models.VehicleType `json:"vehicleType"`
	SocketID    string             `json:"socketId,omitempty"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
}

// DriverStore tracks online drivers in a Redis geo index plus a metadata
// key per driver.
type DriverStore struct {
	rdb *redis.Client
}

func NewDriverStore(rdb *redis.Client) *DriverStore {
	return &DriverStore{rdb: rdb}
}

var _ ride.DriverFinder = (*DriverStore)(nil)

// SetOnline registers or refreshes a driver's presence and position.
func (s *DriverStore) SetOnline(ctx context.Context, p DriverPresence) error {
	err := s.rdb.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      p.DriverID,
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
	}).Err()
	if err != nil {
		return err
	}

	val, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, driverDataKeyPrefix+p.DriverID, val, driverPresenceTTL).Err()
}

// SetOffline removes the driver from the dispatch pool.
func (s *DriverStore) SetOffline(ctx context.Context, driverID string) error {
	s.rdb.ZRem(ctx, driverGeoKey, driverID)
	return s.rdb.Del(ctx, driverDataKeyPrefix+driverID).Err()
}

// Nearby returns online drivers within radiusKm of origin, closest first.
func (s *DriverStore) Nearby(ctx context.Context, origin models.Coordinates, radiusKm float64) ([]DriverPresence, error) {
	locs, err := s.rdb.GeoRadius(ctx, driverGeoKey, origin.Longitude, origin.Latitude, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	var drivers []DriverPresence
	for _, loc := range locs {
		val, err := s.rdb.Get(ctx, driverDataKeyPrefix+loc.Name).Result()
		if err != nil {
			// Metadata expired but the geo entry lingers; skip.
			continue
		}
		var p DriverPresence
		if json.Unmarshal([]byte(val), &p) != nil {
			continue
		}
		p.Latitude = loc.Latitude
		p.Longitude = loc.Longitude
		drivers = append(drivers, p)
	}
	return drivers, nil
}

// NearbyDriverIDs is the dispatch fan-out hook for the ride lifecycle.
func (s *DriverStore) NearbyDriverIDs(ctx context.Context, origin models.Coordinates, radiusKm float64) ([]string, error) {
	drivers, err := s.Nearby(ctx, origin, radiusKm)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(drivers))
	for _, d := range drivers {
		ids = append(ids, d.DriverID)
	}
	return ids, nil
}
