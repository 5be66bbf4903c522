package geo

import "nextride/models"

// DecodePolyline decodes the standard encoded-polyline format used by
// directions APIs into a coordinate sequence. Each value is a signed delta
// against the previous point, zig-zag encoded, split into 5-bit chunks
// offset by 63, with byte values >= 0x20 continuing the current value.
// Coordinates are scaled by 1e5.
//
// A malformed trailing value (input ending mid-chunk) yields the points
// decoded so far.
func DecodePolyline(encoded string) []models.Coordinates {
	var coords []models.Coordinates
	index := 0
	lat, lng := 0, 0

	next := func() (int, bool) {
		shift, result := 0, 0
		for {
			if index >= len(encoded) {
				return 0, false
			}
			b := int(encoded[index]) - 63
			index++
			result |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		if result&1 != 0 {
			return ^(result >> 1), true
		}
		return result >> 1, true
	}

	for index < len(encoded) {
		dLat, ok := next()
		if !ok {
			break
		}
		dLng, ok := next()
		if !ok {
			break
		}
		lat += dLat
		lng += dLng

		coords = append(coords, models.Coordinates{
			Latitude:  float64(lat) / 1e5,
			Longitude: float64(lng) / 1e5,
		})
	}

	return coords
}
