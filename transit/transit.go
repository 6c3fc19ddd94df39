package transit

import (
	"math"

	"itinera/models"
)

// Profile is the average speed and fixed overhead of one transit mode.
type Profile struct {
	SpeedKmh      float64
	BufferMinutes int
}

var profiles = map[models.TransitMode]Profile{
	models.ModeDriving:         {SpeedKmh: 35, BufferMinutes: 15},
	models.ModeWalking:         {SpeedKmh: 5, BufferMinutes: 0},
	models.ModePublicTransport: {SpeedKmh: 25, BufferMinutes: 20},
	models.ModeFlight:          {SpeedKmh: 600, BufferMinutes: 120},
	models.ModeBoat:            {SpeedKmh: 20, BufferMinutes: 30},
}

// FallbackMinutes is used when either endpoint has no coordinates.
const FallbackMinutes = 30

// ProfileFor returns the mode's profile, DRIVING for unknown modes.
func ProfileFor(mode models.TransitMode) Profile {
	if p, ok := profiles[mode]; ok {
		return p
	}
	return profiles[models.ModeDriving]
}

// ValidMode reports whether mode is one of the known transit modes.
func ValidMode(mode models.TransitMode) bool {
	_, ok := profiles[mode]
	return ok
}

// Estimate returns ceil(distance / speed * 60) + buffer minutes.
func Estimate(distanceKm float64, mode models.TransitMode) int {
	p := ProfileFor(mode)
	return int(math.Ceil(distanceKm/p.SpeedKmh*60)) + p.BufferMinutes
}

// Leg derives transit between two places. Missing coordinates on either side
// produce a flat FallbackMinutes leg with zero distance.
func Leg(from, to models.Place, mode models.TransitMode) models.TransitInfo {
	if mode == "" || !ValidMode(mode) {
		mode = models.ModeDriving
	}
	info := models.TransitInfo{Mode: mode, FromPlaceID: from.PlaceID}
	if from.Location == nil || to.Location == nil {
		info.DurationMinutes = FallbackMinutes
		return info
	}
	info.DistanceKm = Haversine(from.Location.Latitude, from.Location.Longitude, to.Location.Latitude, to.Location.Longitude)
	info.DurationMinutes = Estimate(info.DistanceKm, mode)
	return info
}
