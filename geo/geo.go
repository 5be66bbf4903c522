// Package geo provides the geospatial primitives shared by the fare
// estimator and the navigation tracker.
//
// There are deliberately two Haversine functions with different radius
// constants: fare and duration quotes are computed in miles (R = 3959),
// while navigation progress is computed in kilometers (R = 6371). The two
// call sites have never shared a unit convention, so the functions stay
// separate and unit-explicit rather than being unified behind a conversion.
package geo

import (
	"math"

	"nextride/models"
)

const (
	// EarthRadiusMiles is used by the fare/duration path.
	EarthRadiusMiles = 3959.0

	// EarthRadiusKm is used by the navigation path.
	EarthRadiusKm = 6371.0
)

// HaversineMiles returns the great-circle distance between two points in miles.
func HaversineMiles(a, b models.Coordinates) float64 {
	return haversine(a, b, EarthRadiusMiles)
}

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(a, b models.Coordinates) float64 {
	return haversine(a, b, EarthRadiusKm)
}

func haversine(a, b models.Coordinates, radius float64) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return radius * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180.0)
}

// Region is a rectangular map viewport: a center point plus a latitude and
// longitude span.
type Region struct {
	Center  models.Coordinates `json:"center"`
	SpanLat float64            `json:"spanLat"`
	SpanLng float64            `json:"spanLng"`
}

// BoundingRegion computes the viewport containing both points plus a padding
// margin on every side. The center is the midpoint of the padded extents.
func BoundingRegion(a, b models.Coordinates, padding float64) Region {
	minLat := math.Min(a.Latitude, b.Latitude) - padding
	maxLat := math.Max(a.Latitude, b.Latitude) + padding
	minLng := math.Min(a.Longitude, b.Longitude) - padding
	maxLng := math.Max(a.Longitude, b.Longitude) + padding

	return Region{
		Center: models.Coordinates{
			Latitude:  (minLat + maxLat) / 2,
			Longitude: (minLng + maxLng) / 2,
		},
		SpanLat: math.Abs(maxLat - minLat),
		SpanLng: math.Abs(maxLng - minLng),
	}
}

// RouteBounds computes the viewport for a whole coordinate sequence, with a
// 0.01 degree floor on each span so a short route still renders as an area.
// An empty sequence yields a zero-centered minimal region.
func RouteBounds(coords []models.Coordinates, padding float64) Region {
	if len(coords) == 0 {
		return Region{SpanLat: 0.01, SpanLng: 0.01}
	}

	minLat, maxLat := coords[0].Latitude, coords[0].Latitude
	minLng, maxLng := coords[0].Longitude, coords[0].Longitude
	for _, c := range coords[1:] {
		minLat = math.Min(minLat, c.Latitude)
		maxLat = math.Max(maxLat, c.Latitude)
		minLng = math.Min(minLng, c.Longitude)
		maxLng = math.Max(maxLng, c.Longitude)
	}

	return Region{
		Center: models.Coordinates{
			Latitude:  (minLat + maxLat) / 2,
			Longitude: (minLng + maxLng) / 2,
		},
		SpanLat: math.Max(maxLat-minLat+padding, 0.01),
		SpanLng: math.Max(maxLng-minLng+padding, 0.01),
	}
}
