package ride

import (
	"math"

	"nextride/geo"
	"nextride/models"
)

// Fare and duration are quoted once at booking time from the great-circle
// distance in miles. The routed estimate from the directions provider is a
// separate number used only during active navigation, never for the quote.
const (
	// MinimumFare is the fare floor in dollars.
	MinimumFare = 5.00

	// baseRate is the per-mile rate applied when a vehicle class has no
	// entry of its own. Hatchback falls through here: the advertised
	// hatchback discount was marketing copy the estimator never applied,
	// so it is not applied now either.
	baseRate = 1.5

	// minDurationMinutes is the duration floor for any quote.
	minDurationMinutes = 5
)

// fareRates is the canonical per-mile rate table.
var fareRates = map[models.VehicleType]float64{
	models.VehicleSedan:     1.5,
	models.VehicleSUV:       2.0,
	models.VehicleHatchback: 1.5,
	models.VehicleLuxury:    2.5,
}

// RateFor returns the per-mile rate for a vehicle class.
func RateFor(vt models.VehicleType) float64 {
	if rate, ok := fareRates[vt]; ok {
		return rate
	}
	return baseRate
}

// EstimateFare quotes the fare in dollars for a pickup/destination pair,
// rounded to cents, never below MinimumFare.
func EstimateFare(pickup, destination models.Coordinates, vt models.VehicleType) float64 {
	distance := geo.HaversineMiles(pickup, destination)
	fare := math.Max(MinimumFare, distance*RateFor(vt))
	return math.Round(fare*100) / 100
}

// EstimateDuration quotes the trip duration in whole minutes: a linear
// two-minutes-per-mile proxy with a five minute floor.
func EstimateDuration(pickup, destination models.Coordinates) int {
	distance := geo.HaversineMiles(pickup, destination)
	return int(math.Round(math.Max(minDurationMinutes, distance*2)))
}
