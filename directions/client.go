// Package directions fetches planned routes and turn instructions from the
// Google Directions API and shapes them for navigation.
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"nextride/geo"
	"nextride/models"
	"nextride/nav"
	"nextride/ride"
	"nextride/utils"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
	// Audit writes the external call to the audit log. Nil disables auditing.
	Audit func(models.APILog)
}

func NewClient() *Client {
	return &Client{
		APIKey:  os.Getenv("GOOGLE_MAPS_API_KEY"),
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Audit:   utils.LogExternalAPI,
	}
}

type directionsResponse struct {
	Routes []struct {
		Legs []struct {
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
			Steps []struct {
				HTMLInstructions string `json:"html_instructions"`
				Distance         struct {
					Value int `json:"value"`
				} `json:"distance"`
				Duration struct {
					Value int `json:"value"`
				} `json:"duration"`
				Polyline struct {
					Points string `json:"points"`
				} `json:"polyline"`
				Maneuver      string `json:"maneuver"`
				StartLocation struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"start_location"`
			} `json:"steps"`
		} `json:"legs"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
	Status string `json:"status"`
}

// Route fetches driving directions between two points and assembles the
// navigable route: full geometry from the per-step polylines, one
// instruction per step anchored at the step's start.
func (c *Client) Route(ctx context.Context, origin, dest models.Coordinates) (*nav.Route, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_MAPS_API_KEY is not set", ride.ErrUnavailable)
	}

	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude))
	q.Set("destination", fmt.Sprintf("%f,%f", dest.Latitude, dest.Longitude))
	q.Set("mode", "driving")
	q.Set("key", c.APIKey)

	start := time.Now()
	body, status, err := c.get(ctx, "/directions/json", q)
	elapsed := time.Since(start)

	reqPayload := map[string]string{"origin": q.Get("origin"), "destination": q.Get("destination")}
	if err != nil {
		return nil, fmt.Errorf("%w: directions request failed: %v", ride.ErrUnavailable, err)
	}

	var result directionsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: malformed directions response: %v", ride.ErrUnavailable, err)
	}

	if c.Audit != nil {
		c.Audit(models.APILog{
			Provider:        "GoogleMaps",
			Endpoint:        "/directions/json",
			RequestPayload:  reqPayload,
			ResponsePayload: result,
			StatusCode:      status,
			DurationMs:      int(elapsed.Milliseconds()),
		})
	}

	if result.Status != "OK" || len(result.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes found: %s", ride.ErrUnavailable, result.Status)
	}
	if len(result.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("%w: route has no legs", ride.ErrUnavailable)
	}

	leg := result.Routes[0].Legs[0]
	route := &nav.Route{
		DistanceKm:  float64(leg.Distance.Value) / 1000.0,
		DurationMin: float64(leg.Duration.Value) / 60.0,
	}

	for _, step := range leg.Steps {
		maneuver := step.Maneuver
		if maneuver == "" {
			maneuver = "straight"
		}
		route.Instructions = append(route.Instructions, nav.Instruction{
			Text:        stripHTML(step.HTMLInstructions),
			DistanceKm:  float64(step.Distance.Value) / 1000.0,
			DurationMin: float64(step.Duration.Value) / 60.0,
			Maneuver:    maneuver,
			Anchor:      models.Coordinates{Latitude: step.StartLocation.Lat, Longitude: step.StartLocation.Lng},
		})
		route.Coordinates = append(route.Coordinates, geo.DecodePolyline(step.Polyline.Points)...)
	}

	// Steps without geometry still need a drawable path.
	if len(route.Coordinates) == 0 {
		route.Coordinates = geo.DecodePolyline(result.Routes[0].OverviewPolyline.Points)
	}

	return route, nil
}

type geocodeResponse struct {
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
	Status string `json:"status"`
}

// ReverseGeocode resolves coordinates to a street address. Only the pieces
// the booking flow shows are kept.
func (c *Client) ReverseGeocode(ctx context.Context, pos models.Coordinates) (models.Location, error) {
	loc := models.Location{Latitude: pos.Latitude, Longitude: pos.Longitude}

	if c.APIKey == "" {
		return loc, fmt.Errorf("%w: GOOGLE_MAPS_API_KEY is not set", ride.ErrUnavailable)
	}

	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", pos.Latitude, pos.Longitude))
	q.Set("key", c.APIKey)

	body, _, err := c.get(ctx, "/geocode/json", q)
	if err != nil {
		return loc, fmt.Errorf("%w: geocode request failed: %v", ride.ErrUnavailable, err)
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return loc, fmt.Errorf("%w: malformed geocode response: %v", ride.ErrUnavailable, err)
	}
	if result.Status != "OK" || len(result.Results) == 0 {
		return loc, fmt.Errorf("%w: no geocode results: %s", ride.ErrUnavailable, result.Status)
	}

	best := result.Results[0]
	loc.Address = best.FormattedAddress
	for _, comp := range best.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "locality":
				loc.City = comp.LongName
			case "administrative_area_level_1":
				loc.State = comp.ShortName
			case "postal_code":
				loc.ZipCode = comp.LongName
			}
		}
	}

	return loc, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("status %s: %s", resp.Status, body)
	}
	return body, resp.StatusCode, nil
}

// stripHTML flattens the markup Google embeds in instruction text. Divs
// become separators so "Turn left<div>onto Main St</div>" stays readable.
func stripHTML(s string) string {
	s = strings.ReplaceAll(s, "<div", " <div")
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	out = strings.ReplaceAll(out, "&nbsp;", " ")
	out = strings.ReplaceAll(out, "&amp;", "&")
	return out
}
