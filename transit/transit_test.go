package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"itinera/models"
)

func TestEstimateByMode(t *testing.T) {
	// 50/35*60 = 85.7 -> 86, plus 15 buffer
	assert.Equal(t, 101, Estimate(50, models.ModeDriving))
	assert.Equal(t, 60, Estimate(5, models.ModeWalking))
	assert.Equal(t, 44, Estimate(10, models.ModePublicTransport))
	assert.Equal(t, 240, Estimate(1200, models.ModeFlight))
	assert.Equal(t, 60, Estimate(10, models.ModeBoat))
	assert.Equal(t, 15, Estimate(0, models.ModeDriving))
	assert.Equal(t, Estimate(50, models.ModeDriving), Estimate(50, "HOVERCRAFT"))
}

func TestHaversine(t *testing.T) {
	// Hanoi to Ho Chi Minh City, roughly 1,140 km
	d := Haversine(21.0285, 105.8542, 10.8231, 106.6297)
	assert.InDelta(t, 1138, d, 10)
	assert.Equal(t, 0.0, Haversine(10, 10, 10, 10))
	assert.Equal(t, Haversine(1, 2, 3, 4), Haversine(3, 4, 1, 2))
}

func TestLegFallsBackWithoutCoordinates(t *testing.T) {
	a := models.Place{PlaceID: "a", Location: &models.Coordinates{Latitude: 16.0544, Longitude: 108.2022}}
	b := models.Place{PlaceID: "b"}

	leg := Leg(a, b, models.ModeWalking)
	assert.Equal(t, FallbackMinutes, leg.DurationMinutes)
	assert.Zero(t, leg.DistanceKm)
	assert.Equal(t, models.ModeWalking, leg.Mode)
	assert.Equal(t, "a", leg.FromPlaceID)

	b.Location = &models.Coordinates{Latitude: 16.0544, Longitude: 108.2522}
	leg = Leg(a, b, "")
	assert.Equal(t, models.ModeDriving, leg.Mode)
	assert.Greater(t, leg.DistanceKm, 0.0)
	assert.Equal(t, Estimate(leg.DistanceKm, models.ModeDriving), leg.DurationMinutes)
}
