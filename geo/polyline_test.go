package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePolyline_Reference(t *testing.T) {
	// Canonical example string from the polyline format documentation.
	got := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")

	require.Len(t, got, 3)

	want := [][2]float64{
		{38.5, -120.2},
		{40.7, -120.95},
		{43.252, -126.453},
	}
	for i, w := range want {
		assert.InDelta(t, w[0], got[i].Latitude, 1e-5, "point %d latitude", i)
		assert.InDelta(t, w[1], got[i].Longitude, 1e-5, "point %d longitude", i)
	}
}

func TestDecodePolyline_SinglePoint(t *testing.T) {
	// "_p~iF~ps|U" is just the first point of the reference string.
	got := DecodePolyline("_p~iF~ps|U")
	require.Len(t, got, 1)
	assert.InDelta(t, 38.5, got[0].Latitude, 1e-5)
	assert.InDelta(t, -120.2, got[0].Longitude, 1e-5)
}

func TestDecodePolyline_Empty(t *testing.T) {
	assert.Empty(t, DecodePolyline(""))
}

func TestDecodePolyline_TruncatedInput(t *testing.T) {
	// Cut mid-value: the decoder keeps the complete points and drops the rest.
	got := DecodePolyline("_p~iF~ps|U_ul")
	require.Len(t, got, 1)
	assert.InDelta(t, 38.5, got[0].Latitude, 1e-5)
}

func TestDecodePolyline_ZigZagNegatives(t *testing.T) {
	// Every point of the reference string has a negative longitude; make sure
	// the sign decoding holds through accumulated deltas.
	got := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	for i, c := range got {
		if c.Longitude >= 0 {
			t.Errorf("point %d: longitude %v, want negative", i, c.Longitude)
		}
	}
}
