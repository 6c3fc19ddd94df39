package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinera/errs"
	"itinera/models"
	"itinera/transit"
)

func at(lat, lon float64) *models.Coordinates {
	return &models.Coordinates{Latitude: lat, Longitude: lon}
}

var testPlaces = map[string]models.Place{
	"hotel":  {PlaceID: "hotel", Location: at(16.0544, 108.2022)},
	"beach":  {PlaceID: "beach", Location: at(16.0544, 108.2472)},
	"market": {PlaceID: "market"},
}

func stops(ids ...string) []models.Stop {
	out := make([]models.Stop, len(ids))
	for i, id := range ids {
		out[i] = models.Stop{StopID: id + "-stop", PlaceID: id}
	}
	return out
}

func TestFirstStopDefaultsAndSequences(t *testing.T) {
	it := &models.Itinerary{Days: []models.Day{
		{DayNumber: 2, Stops: stops("beach")},
		{DayNumber: 1, Stops: stops("hotel", "beach", "market")},
	}}

	_, err := Recalculate(it, testPlaces)
	require.NoError(t, err)

	require.Equal(t, 1, it.Days[0].DayNumber)
	day1 := it.Days[0].Stops
	assert.Nil(t, day1[0].Transit)
	assert.Equal(t, "08:00", day1[0].StartTime)
	assert.Equal(t, "09:00", day1[0].EndTime)

	for i, s := range day1 {
		assert.Equal(t, i+1, s.Sequence)
	}

	// hotel -> beach is about 4.8 km: ceil(4.8/35*60)+15 = 24
	require.NotNil(t, day1[1].Transit)
	assert.Equal(t, "hotel", day1[1].Transit.FromPlaceID)
	assert.Equal(t, transit.Estimate(day1[1].Transit.DistanceKm, models.ModeDriving), day1[1].Transit.DurationMinutes)
	assert.Equal(t, FormatClock(9*60+day1[1].Transit.DurationMinutes), day1[1].StartTime)

	// market has no coordinates
	assert.Equal(t, transit.FallbackMinutes, day1[2].Transit.DurationMinutes)
	assert.Zero(t, day1[2].Transit.DistanceKm)
}

func TestCrossDayTransit(t *testing.T) {
	it := &models.Itinerary{Days: []models.Day{
		{DayNumber: 1, Stops: stops("hotel")},
		{DayNumber: 2},
		{DayNumber: 3, Stops: stops("beach")},
	}}
	_, err := Recalculate(it, testPlaces)
	require.NoError(t, err)

	first := it.Days[2].Stops[0]
	require.NotNil(t, first.Transit)
	assert.Equal(t, "hotel", first.Transit.FromPlaceID)
	assert.Equal(t, FormatClock(DayStartMinutes+first.Transit.DurationMinutes), first.StartTime)
}

func TestGraceWindow(t *testing.T) {
	build := func(start string) *models.Itinerary {
		s := stops("hotel", "market")
		s[0].StartTime, s[0].EndTime = "10:00", "11:00"
		s[1].StartTime = start
		return &models.Itinerary{Days: []models.Day{{DayNumber: 1, Stops: s}}}
	}

	// arrival is 11:30 (flat 30 min transit)
	cases := map[string]string{
		"":      "11:30",
		"11:00": "11:30", // before arrival
		"11:45": "11:45", // inside grace
		"12:00": "12:00", // exactly 30 min gap
		"12:01": "11:30", // beyond grace
	}
	for in, want := range cases {
		it := build(in)
		_, err := Recalculate(it, testPlaces)
		require.NoError(t, err)
		assert.Equal(t, want, it.Days[0].Stops[1].StartTime, "start %q", in)
		assert.Equal(t, "10:00", it.Days[0].Stops[0].StartTime)
	}
}

func TestStartNeverBeforePredecessorEnd(t *testing.T) {
	s := stops("hotel", "beach", "market", "hotel")
	s[0].StartTime, s[0].EndTime = "09:00", "12:30"
	s[2].StartTime, s[2].EndTime = "06:00", "06:30"
	it := &models.Itinerary{Days: []models.Day{{DayNumber: 1, Stops: s}}}

	_, err := Recalculate(it, testPlaces)
	require.NoError(t, err)

	got := it.Days[0].Stops
	for i := 1; i < len(got); i++ {
		prevEnd, _, _ := ParseClock(got[i-1].EndTime)
		start, _, _ := ParseClock(got[i].StartTime)
		assert.GreaterOrEqual(t, start, prevEnd+got[i].Transit.DurationMinutes)
	}
}

func TestEndTimeKeptOrDefaulted(t *testing.T) {
	s := stops("hotel", "market")
	s[0].StartTime, s[0].EndTime = "08:00", "10:30"
	s[1].EndTime = "10:45" // before the computed 11:00 start, not user supplied now
	it := &models.Itinerary{Days: []models.Day{{DayNumber: 1, Stops: s}}}

	_, err := Recalculate(it, testPlaces)
	require.NoError(t, err)
	assert.Equal(t, "10:30", it.Days[0].Stops[0].EndTime)
	assert.Equal(t, "11:00", it.Days[0].Stops[1].StartTime)
	assert.Equal(t, "12:00", it.Days[0].Stops[1].EndTime)
}

func TestUserEndBeforeStartIsRejected(t *testing.T) {
	s := stops("hotel", "market")
	s[0].StartTime, s[0].EndTime = "08:00", "10:30"
	s[1].EndTime = "10:45"
	it := &models.Itinerary{Days: []models.Day{{DayNumber: 1, Stops: s}}}

	_, err := Recalculate(it, testPlaces, WithUserEndTime("market-stop"))
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestManualTransitWins(t *testing.T) {
	s := stops("hotel", "beach")
	s[1].IsManualTransit = true
	s[1].Transit = &models.TransitInfo{Mode: models.ModeFlight, DurationMinutes: 90, DistanceKm: 600, Detail: "VN123"}
	it := &models.Itinerary{Days: []models.Day{{DayNumber: 1, Stops: s}}}

	_, err := Recalculate(it, testPlaces)
	require.NoError(t, err)
	tr := it.Days[0].Stops[1].Transit
	assert.Equal(t, 90, tr.DurationMinutes)
	assert.Equal(t, models.ModeFlight, tr.Mode)
	assert.Equal(t, "VN123", tr.Detail)
	assert.Equal(t, "10:30", it.Days[0].Stops[1].StartTime)

	// a manual flag without duration falls back to estimation using the stored mode
	it.Days[0].Stops[1].Transit = &models.TransitInfo{Mode: models.ModeWalking}
	_, err = Recalculate(it, testPlaces)
	require.NoError(t, err)
	assert.Equal(t, models.ModeWalking, it.Days[0].Stops[1].Transit.Mode)
	assert.Greater(t, it.Days[0].Stops[1].Transit.DurationMinutes, 30)
}

func TestWarnings(t *testing.T) {
	var many []models.Stop
	for i := 0; i < 9; i++ {
		many = append(many, models.Stop{StopID: string(rune('a' + i)), PlaceID: "market"})
	}
	many[0].StartTime = "04:00"
	many[8].EndTime = "23:59"

	short := stops("hotel")
	short[0].StartTime, short[0].EndTime = "09:00", "09:10"

	it := &models.Itinerary{Days: []models.Day{
		{DayNumber: 1, Stops: many},
		{DayNumber: 2, Stops: short},
	}}
	_, err := Recalculate(it, testPlaces)
	require.NoError(t, err)

	w1 := it.Days[0].Warnings
	assert.Contains(t, w1, "day starts before 05:00")
	assert.Contains(t, w1, "day ends after 22:00")
	assert.Contains(t, w1, "day has 9 stops, more than 8")

	res, err := Recalculate(it, testPlaces)
	require.NoError(t, err)
	var day2 []string
	for _, w := range res.Warnings {
		if w.DayNumber == 2 {
			day2 = append(day2, w.Message)
		}
	}
	assert.Equal(t, []string{"stop 1 lasts only 10 minutes"}, day2)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	s := stops("hotel", "beach", "market")
	s[1].StartTime = "09:40"
	it := &models.Itinerary{Days: []models.Day{{DayNumber: 1, Stops: s}, {DayNumber: 2, Stops: stops("beach")}}}

	_, err := Recalculate(it, testPlaces)
	require.NoError(t, err)
	snapshot := make([]models.Stop, len(it.Days[0].Stops))
	copy(snapshot, it.Days[0].Stops)

	_, err = Recalculate(it, testPlaces)
	require.NoError(t, err)
	for i := range snapshot {
		assert.Equal(t, snapshot[i].StartTime, it.Days[0].Stops[i].StartTime)
		assert.Equal(t, snapshot[i].EndTime, it.Days[0].Stops[i].EndTime)
	}
}

func TestClock(t *testing.T) {
	assert.Equal(t, "00:15", FormatClock(24*60+15))
	m, ok, err := ParseClock("07:05")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 425, m)
	assert.Error(t, ValidateClock("25:00"))
	assert.Error(t, ValidateClock("noon"))
	assert.NoError(t, ValidateClock(""))
}
