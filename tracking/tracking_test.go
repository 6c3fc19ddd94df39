package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinera/errs"
	"itinera/models"
)

func trip() *models.Itinerary {
	return &models.Itinerary{
		ItineraryID: "it-1",
		OwnerID:     "owner",
		Members:     []string{"owner", "m1", "m2", "m3"},
		StartDate:   "2026-05-01",
		EndDate:     "2026-05-03",
		Status:      models.StatusPlanning,
		Days: []models.Day{
			{DayNumber: 1, Date: "2026-05-01", Stops: []models.Stop{
				{StopID: "a", Status: models.StopPending, CostType: models.CostShared,
					Reservation: &models.Reservation{UnitID: "u1", Dates: []string{"2026-05-01", "2026-05-02"}, Quantity: 1}},
				{StopID: "b", Status: models.StopPending, CostType: models.CostPerPerson},
			}},
			{DayNumber: 2, Date: "2026-05-02", Stops: []models.Stop{
				{StopID: "c", Status: models.StopPending, CostType: models.CostPerPerson,
					Reservation: &models.Reservation{UnitID: "t1", Dates: []string{"2026-05-02"}, TimeSlot: "19:00", Quantity: 1}},
			}},
			{DayNumber: 3, Date: "2026-05-03"},
		},
	}
}

func TestStartShiftsToToday(t *testing.T) {
	it := trip()
	moves, err := Start(it, "owner", "2026-05-04", false)
	require.NoError(t, err)

	assert.Equal(t, models.StatusOnGoing, it.Status)
	assert.Equal(t, "2026-05-04", it.StartDate)
	assert.Equal(t, "2026-05-06", it.EndDate)
	assert.Equal(t, "2026-05-05", it.Days[1].Date)
	require.Len(t, moves, 2)
	assert.Equal(t, []string{"2026-05-01", "2026-05-02"}, moves[0].Old.Dates)
	assert.Equal(t, []string{"2026-05-04", "2026-05-05"}, it.Days[0].Stops[0].Reservation.Dates)
}

func TestStartOnStartDateKeepsDates(t *testing.T) {
	it := trip()
	moves, err := Start(it, "owner", "2026-05-01", false)
	require.NoError(t, err)
	assert.Empty(t, moves)
	assert.Equal(t, "2026-05-01", it.StartDate)
}

func TestScheduleFutureTrip(t *testing.T) {
	it := trip()
	moves, err := Start(it, "owner", "2026-04-20", true)
	require.NoError(t, err)
	assert.Nil(t, moves)
	assert.Equal(t, models.StatusUpcoming, it.Status)
	assert.Equal(t, "2026-05-01", it.StartDate)
}

func TestOwnerOnlyTransitions(t *testing.T) {
	it := trip()
	_, err := Start(it, "m1", "2026-05-01", false)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	it.Status = models.StatusOnGoing
	assert.Equal(t, errs.KindForbidden, errs.KindOf(Pause(it, "m1")))

	_, err = Cancel(it, "m1")
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
}

func TestInvalidTransitions(t *testing.T) {
	it := trip()
	assert.Equal(t, errs.KindValidation, errs.KindOf(Pause(it, "owner")))

	_, err := Resume(it, "owner", "2026-05-10")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	it.Status = models.StatusCancelled
	_, err = Cancel(it, "owner")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestResumeShiftsFromFirstPendingDay(t *testing.T) {
	it := trip()
	it.Status = models.StatusPaused
	it.Days[0].Stops[0].Status = models.StopArrived
	it.Days[0].Stops[1].Status = models.StopSkipped

	moves, err := Resume(it, "owner", "2026-05-10")
	require.NoError(t, err)

	assert.Equal(t, models.StatusOnGoing, it.Status)
	assert.Equal(t, "2026-05-01", it.StartDate)
	assert.Equal(t, "2026-05-01", it.Days[0].Date)
	assert.Equal(t, "2026-05-10", it.Days[1].Date)
	assert.Equal(t, "2026-05-11", it.Days[2].Date)
	assert.Equal(t, "2026-05-11", it.EndDate)

	require.Len(t, moves, 1)
	assert.Equal(t, 1, moves[0].DayIndex)
	assert.Equal(t, []string{"2026-05-02"}, moves[0].Old.Dates)
	assert.Equal(t, []string{"2026-05-10"}, it.Days[1].Stops[0].Reservation.Dates)
}

func TestResumeRejectsDateBeforeVisitedDays(t *testing.T) {
	for _, date := range []string{"2026-04-20", "2026-05-01"} {
		it := trip()
		it.Status = models.StatusPaused
		it.Days[0].Stops[0].Status = models.StopArrived
		it.Days[0].Stops[1].Status = models.StopSkipped

		_, err := Resume(it, "owner", date)
		require.Error(t, err, date)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		assert.Equal(t, models.StatusPaused, it.Status)
		assert.Equal(t, "2026-05-02", it.Days[1].Date)
	}
}

func TestResumeWithNothingPendingShiftsWholeTrip(t *testing.T) {
	it := trip()
	it.Status = models.StatusPaused
	for di := range it.Days {
		for si := range it.Days[di].Stops {
			it.Days[di].Stops[si].Status = models.StopArrived
		}
	}
	assert.Equal(t, 0, FirstPendingDay(it))

	moves, err := Resume(it, "owner", "2026-05-03")
	require.NoError(t, err)
	assert.Empty(t, moves)
	assert.Equal(t, "2026-05-03", it.StartDate)
	assert.Equal(t, "2026-05-05", it.EndDate)
}

func TestCancelReturnsPendingHolds(t *testing.T) {
	it := trip()
	it.Status = models.StatusOnGoing
	it.Days[1].Stops[0].Status = models.StopArrived

	held, err := Cancel(it, "owner")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, it.Status)
	require.Len(t, held, 1)
	assert.Equal(t, "u1", held[0].UnitID)
}

func TestCheckInTotalBill(t *testing.T) {
	it := trip()
	it.Status = models.StatusOnGoing
	bill := int64(1000)
	now := time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)

	require.NoError(t, CheckIn(it, "m2", "b", CheckInInput{ActualCost: &bill, IsTotalBill: true, CheckInImage: "img.jpg"}, now))

	stop := it.Days[0].Stops[1]
	assert.Equal(t, models.StopArrived, stop.Status)
	assert.Equal(t, int64(250), stop.ActualCost)
	assert.Equal(t, int64(250), stop.EstimatedCost)
	assert.Equal(t, "img.jpg", stop.CheckInImage)
	require.NotNil(t, stop.ActualArrivalTime)
	assert.True(t, now.Equal(*stop.ActualArrivalTime))
	assert.Equal(t, 1, it.CompletedStops)
	assert.Equal(t, 3, it.TotalStops)
}

func TestCheckInSharedStopKeepsBill(t *testing.T) {
	it := trip()
	it.Status = models.StatusOnGoing
	bill := int64(1000)
	require.NoError(t, CheckIn(it, "owner", "a", CheckInInput{ActualCost: &bill, IsTotalBill: true}, time.Now()))
	assert.Equal(t, int64(1000), it.Days[0].Stops[0].EstimatedCost)
}

func TestCheckInRules(t *testing.T) {
	it := trip()
	it.Status = models.StatusOnGoing

	err := CheckIn(it, "stranger", "a", CheckInInput{}, time.Now())
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	err = CheckIn(it, "owner", "nope", CheckInInput{}, time.Now())
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	neg := int64(-5)
	err = CheckIn(it, "owner", "a", CheckInInput{ActualCost: &neg}, time.Now())
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	require.NoError(t, CheckIn(it, "owner", "a", CheckInInput{}, time.Now()))
	err = CheckIn(it, "owner", "a", CheckInInput{}, time.Now())
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestSkipReleasesAndZeroes(t *testing.T) {
	it := trip()
	it.Status = models.StatusOnGoing
	it.Days[0].Stops[0].EstimatedCost = 5000

	held, err := Skip(it, "m1", "a")
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, "u1", held.UnitID)

	stop := it.Days[0].Stops[0]
	assert.Equal(t, models.StopSkipped, stop.Status)
	assert.Zero(t, stop.EstimatedCost)
	assert.Nil(t, stop.Reservation)
}

func TestLastStopCompletesTrip(t *testing.T) {
	it := trip()
	it.Status = models.StatusOnGoing
	_, err := Skip(it, "owner", "a")
	require.NoError(t, err)
	require.NoError(t, CheckIn(it, "owner", "b", CheckInInput{}, time.Now()))
	assert.Equal(t, models.StatusOnGoing, it.Status)

	require.NoError(t, CheckIn(it, "owner", "c", CheckInInput{}, time.Now()))
	assert.Equal(t, models.StatusCompleted, it.Status)
	assert.Equal(t, 3, it.CompletedStops)
	assert.Equal(t, -1, FirstPendingDay(it))

	_, err = Skip(it, "owner", "c")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestUpdateProgressEmptyTrip(t *testing.T) {
	it := &models.Itinerary{Status: models.StatusOnGoing}
	UpdateProgress(it)
	assert.Equal(t, models.StatusOnGoing, it.Status)
	assert.Zero(t, it.TotalStops)
}
