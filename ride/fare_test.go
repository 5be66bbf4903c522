package ride

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"nextride/geo"
	"nextride/models"
)

var (
	pickupSF = models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}
	destSF   = models.Coordinates{Latitude: 37.7849, Longitude: -122.4094}
	destFar  = models.Coordinates{Latitude: 37.3382, Longitude: -121.8863} // San Jose
)

func TestRateFor(t *testing.T) {
	assert.Equal(t, 1.5, RateFor(models.VehicleSedan))
	assert.Equal(t, 2.0, RateFor(models.VehicleSUV))
	assert.Equal(t, 1.5, RateFor(models.VehicleHatchback))
	assert.Equal(t, 2.5, RateFor(models.VehicleLuxury))
	// Unknown classes quote at the base rate rather than failing.
	assert.Equal(t, 1.5, RateFor(models.VehicleType("rickshaw")))
}

func TestEstimateFare_Floor(t *testing.T) {
	// ~0.9 miles; every class bottoms out at the minimum fare.
	for _, vt := range []models.VehicleType{
		models.VehicleSedan, models.VehicleSUV, models.VehicleHatchback, models.VehicleLuxury,
	} {
		assert.Equal(t, MinimumFare, EstimateFare(pickupSF, destSF, vt), string(vt))
	}
}

func TestEstimateFare_Formula(t *testing.T) {
	miles := geo.HaversineMiles(pickupSF, destFar)

	for vt, rate := range map[models.VehicleType]float64{
		models.VehicleSedan:  1.5,
		models.VehicleSUV:    2.0,
		models.VehicleLuxury: 2.5,
	} {
		want := math.Round(math.Max(MinimumFare, miles*rate)*100) / 100
		assert.Equal(t, want, EstimateFare(pickupSF, destFar, vt), string(vt))
	}
}

func TestEstimateFare_HatchbackMatchesSedan(t *testing.T) {
	assert.Equal(t,
		EstimateFare(pickupSF, destFar, models.VehicleSedan),
		EstimateFare(pickupSF, destFar, models.VehicleHatchback))
}

func TestEstimateFare_TwoDecimalPlaces(t *testing.T) {
	fare := EstimateFare(pickupSF, destFar, models.VehicleSedan)
	assert.Equal(t, math.Round(fare*100)/100, fare)
	assert.GreaterOrEqual(t, fare, MinimumFare)
}

func TestEstimateDuration(t *testing.T) {
	// Short hop: floor applies.
	assert.Equal(t, 5, EstimateDuration(pickupSF, destSF))

	// Long haul: two minutes per mile, rounded.
	miles := geo.HaversineMiles(pickupSF, destFar)
	assert.Equal(t, int(math.Round(miles*2)), EstimateDuration(pickupSF, destFar))
}
