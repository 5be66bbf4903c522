package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"nextride/models"
)

func TestHaversine_SamePoint(t *testing.T) {
	p := models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}
	assert.Equal(t, 0.0, HaversineMiles(p, p))
	assert.Equal(t, 0.0, HaversineKm(p, p))
}

func TestHaversine_Symmetry(t *testing.T) {
	cases := []struct {
		name string
		a, b models.Coordinates
	}{
		{"sf-to-oakland", models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}, models.Coordinates{Latitude: 37.8044, Longitude: -122.2712}},
		{"equator", models.Coordinates{Latitude: 0, Longitude: 0}, models.Coordinates{Latitude: 0, Longitude: 90}},
		{"antimeridian", models.Coordinates{Latitude: 10, Longitude: 179.9}, models.Coordinates{Latitude: -10, Longitude: -179.9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, HaversineKm(tc.a, tc.b), HaversineKm(tc.b, tc.a), 1e-9)
			assert.InDelta(t, HaversineMiles(tc.a, tc.b), HaversineMiles(tc.b, tc.a), 1e-9)
		})
	}
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// SF downtown to SFO is roughly 19 km great-circle.
	downtown := models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}
	sfo := models.Coordinates{Latitude: 37.6213, Longitude: -122.3790}
	got := HaversineKm(downtown, sfo)
	if got < 17 || got > 20 {
		t.Errorf("HaversineKm(downtown, SFO) = %.2f km, want ~17-20", got)
	}
}

func TestHaversineMiles_MatchesKmRatio(t *testing.T) {
	a := models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}
	b := models.Coordinates{Latitude: 37.7849, Longitude: -122.4094}
	mi := HaversineMiles(a, b)
	km := HaversineKm(a, b)
	// Same formula, different radius constant.
	assert.InDelta(t, EarthRadiusMiles/EarthRadiusKm, mi/km, 1e-9)
}

func TestBoundingRegion(t *testing.T) {
	a := models.Coordinates{Latitude: 37.70, Longitude: -122.50}
	b := models.Coordinates{Latitude: 37.80, Longitude: -122.40}

	r := BoundingRegion(a, b, 0.02)

	assert.InDelta(t, 37.75, r.Center.Latitude, 1e-9)
	assert.InDelta(t, -122.45, r.Center.Longitude, 1e-9)
	// Extent plus padding on both sides.
	assert.InDelta(t, 0.14, r.SpanLat, 1e-9)
	assert.InDelta(t, 0.14, r.SpanLng, 1e-9)
}

func TestBoundingRegion_OrderIndependent(t *testing.T) {
	a := models.Coordinates{Latitude: 37.70, Longitude: -122.50}
	b := models.Coordinates{Latitude: 37.80, Longitude: -122.40}
	assert.Equal(t, BoundingRegion(a, b, 0.02), BoundingRegion(b, a, 0.02))
}

func TestRouteBounds_Empty(t *testing.T) {
	r := RouteBounds(nil, 0.02)
	assert.Equal(t, 0.01, r.SpanLat)
	assert.Equal(t, 0.01, r.SpanLng)
	assert.Equal(t, models.Coordinates{}, r.Center)
}

func TestRouteBounds_SpanFloor(t *testing.T) {
	// Two nearly identical points still produce a visible viewport.
	coords := []models.Coordinates{
		{Latitude: 37.7749, Longitude: -122.4194},
		{Latitude: 37.77491, Longitude: -122.41941},
	}
	r := RouteBounds(coords, 0)
	assert.Equal(t, 0.01, r.SpanLat)
	assert.Equal(t, 0.01, r.SpanLng)
	if math.Abs(r.Center.Latitude-37.7749) > 0.001 {
		t.Errorf("center drifted: %+v", r.Center)
	}
}
