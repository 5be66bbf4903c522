package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextride/models"
	"nextride/ride"
)

const directionsFixture = `{
	"status": "OK",
	"routes": [{
		"overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC"},
		"legs": [{
			"distance": {"value": 12500},
			"duration": {"value": 1500},
			"steps": [
				{
					"html_instructions": "Head <b>north</b> on <b>Market St</b>",
					"distance": {"value": 500},
					"duration": {"value": 90},
					"polyline": {"points": "_p~iF~ps|U_ulLnnqC"},
					"maneuver": "",
					"start_location": {"lat": 38.5, "lng": -120.2}
				},
				{
					"html_instructions": "Turn <b>left</b><div style=\"font-size:0.9em\">onto Main St</div>",
					"distance": {"value": 12000},
					"duration": {"value": 1410},
					"polyline": {"points": ""},
					"maneuver": "turn-left",
					"start_location": {"lat": 40.7, "lng": -120.95}
				}
			]
		}]
	}]
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		HTTP:    &http.Client{Timeout: time.Second},
	}
}

func TestRoute(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directions/json", r.URL.Path)
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))
		w.Write([]byte(directionsFixture))
	})

	route, err := c.Route(context.Background(),
		models.Coordinates{Latitude: 38.5, Longitude: -120.2},
		models.Coordinates{Latitude: 40.7, Longitude: -120.95})

	require.NoError(t, err)
	assert.InDelta(t, 12.5, route.DistanceKm, 1e-9)
	assert.InDelta(t, 25.0, route.DurationMin, 1e-9)

	require.Len(t, route.Instructions, 2)
	assert.Equal(t, "Head north on Market St", route.Instructions[0].Text)
	assert.Equal(t, "straight", route.Instructions[0].Maneuver, "empty maneuver defaults")
	assert.Equal(t, "Turn left onto Main St", route.Instructions[1].Text)
	assert.Equal(t, "turn-left", route.Instructions[1].Maneuver)
	assert.InDelta(t, 40.7, route.Instructions[1].Anchor.Latitude, 1e-9)

	// Geometry comes from the step polylines.
	require.Len(t, route.Coordinates, 2)
	assert.InDelta(t, 38.5, route.Coordinates[0].Latitude, 1e-5)
	assert.InDelta(t, -120.2, route.Coordinates[0].Longitude, 1e-5)
	assert.InDelta(t, 40.7, route.Coordinates[1].Latitude, 1e-5)
}

func TestRoute_FallsBackToOverviewPolyline(t *testing.T) {
	const noStepGeometry = `{
		"status": "OK",
		"routes": [{
			"overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC"},
			"legs": [{
				"distance": {"value": 1000},
				"duration": {"value": 120},
				"steps": []
			}]
		}]
	}`
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(noStepGeometry))
	})

	route, err := c.Route(context.Background(), models.Coordinates{Latitude: 1}, models.Coordinates{Latitude: 2})

	require.NoError(t, err)
	assert.Len(t, route.Coordinates, 2)
	assert.Empty(t, route.Instructions)
}

func TestRoute_Unavailable(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		c := &Client{HTTP: http.DefaultClient}
		_, err := c.Route(context.Background(), models.Coordinates{}, models.Coordinates{})
		assert.ErrorIs(t, err, ride.ErrUnavailable)
	})

	t.Run("upstream error status", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
		})
		_, err := c.Route(context.Background(), models.Coordinates{}, models.Coordinates{})
		assert.ErrorIs(t, err, ride.ErrUnavailable)
	})

	t.Run("http failure", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		})
		_, err := c.Route(context.Background(), models.Coordinates{}, models.Coordinates{})
		assert.ErrorIs(t, err, ride.ErrUnavailable)
	})
}

func TestReverseGeocode(t *testing.T) {
	const fixture = `{
		"status": "OK",
		"results": [{
			"formatted_address": "1 Market St, San Francisco, CA 94105, USA",
			"address_components": [
				{"long_name": "San Francisco", "short_name": "SF", "types": ["locality", "political"]},
				{"long_name": "California", "short_name": "CA", "types": ["administrative_area_level_1"]},
				{"long_name": "94105", "short_name": "94105", "types": ["postal_code"]}
			]
		}]
	}`
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		w.Write([]byte(fixture))
	})

	loc, err := c.ReverseGeocode(context.Background(), models.Coordinates{Latitude: 37.7749, Longitude: -122.4194})

	require.NoError(t, err)
	assert.Equal(t, "1 Market St, San Francisco, CA 94105, USA", loc.Address)
	assert.Equal(t, "San Francisco", loc.City)
	assert.Equal(t, "CA", loc.State)
	assert.Equal(t, "94105", loc.ZipCode)
	assert.InDelta(t, 37.7749, loc.Latitude, 1e-9)
}

func TestStripHTML(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Head <b>north</b>", "Head north"},
		{"Turn left<div style=\"x\">onto Main St</div>", "Turn left onto Main St"},
		{"A&nbsp;St &amp; B St", "A St & B St"},
		{"plain text", "plain text"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stripHTML(tc.in))
	}
}
