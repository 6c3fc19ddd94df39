// Package tracking holds the itinerary lifecycle and the per-stop progress
// transitions. Functions mutate the loaded itinerary and report which ledger
// holds the caller has to release or re-take; they never touch storage.
package tracking

import (
	"time"

	"github.com/shopspring/decimal"

	"itinera/errs"
	"itinera/models"
	"itinera/utils"
)

// Move is a reservation whose dates changed with its day.
type Move struct {
	DayIndex  int
	StopIndex int
	Old       models.Reservation
}

func requireOwner(it *models.Itinerary, userID string) error {
	if it.OwnerID != userID {
		return errs.Forbidden("only the owner can change the itinerary status")
	}
	return nil
}

func requireMember(it *models.Itinerary, userID string) error {
	if !it.IsMember(userID) {
		return errs.Forbidden("you are not a member of this itinerary")
	}
	return nil
}

func requireLive(it *models.Itinerary) error {
	if it.Status.Terminal() {
		return errs.Validation("itinerary is %s", it.Status)
	}
	return nil
}

// Start moves PLANNING or UPCOMING to ON_GOING, shifting the whole trip so it
// begins today. With schedule set and a start date still ahead, the trip
// becomes UPCOMING and keeps its dates.
func Start(it *models.Itinerary, userID, today string, schedule bool) ([]Move, error) {
	if err := requireOwner(it, userID); err != nil {
		return nil, err
	}
	if it.Status != models.StatusPlanning && it.Status != models.StatusUpcoming {
		return nil, errs.Validation("cannot start an itinerary that is %s", it.Status)
	}

	if schedule && it.StartDate > today {
		it.Status = models.StatusUpcoming
		return nil, nil
	}

	gap, err := utils.DaysBetween(it.StartDate, today)
	if err != nil {
		return nil, err
	}
	moves, err := Shift(it, 0, gap)
	if err != nil {
		return nil, err
	}
	it.Status = models.StatusOnGoing
	return moves, nil
}

// Pause moves ON_GOING or UPCOMING to PAUSED.
func Pause(it *models.Itinerary, userID string) error {
	if err := requireOwner(it, userID); err != nil {
		return err
	}
	if it.Status != models.StatusOnGoing && it.Status != models.StatusUpcoming {
		return errs.Validation("cannot pause an itinerary that is %s", it.Status)
	}
	it.Status = models.StatusPaused
	return nil
}

// FirstPendingDay is the index of the first day holding a PENDING stop. With
// none pending it is 0, or -1 once the trip is completed.
func FirstPendingDay(it *models.Itinerary) int {
	for i, d := range it.Days {
		for _, s := range d.Stops {
			if s.Status == models.StopPending {
				return i
			}
		}
	}
	if it.Status == models.StatusCompleted || len(it.Days) == 0 {
		return -1
	}
	return 0
}

// Resume moves PAUSED to ON_GOING. The first pending day and every day after
// it slide so the first pending day falls on newStart, which must come after
// the last day already behind the trip.
func Resume(it *models.Itinerary, userID, newStart string) ([]Move, error) {
	if err := requireOwner(it, userID); err != nil {
		return nil, err
	}
	if it.Status != models.StatusPaused {
		return nil, errs.Validation("cannot resume an itinerary that is %s", it.Status)
	}
	if _, err := utils.ParseDate(newStart); err != nil {
		return nil, err
	}

	var moves []Move
	if idx := FirstPendingDay(it); idx >= 0 {
		if idx > 0 && newStart <= it.Days[idx-1].Date {
			return nil, errs.Validation("new start date %s must be after day %d (%s)",
				newStart, it.Days[idx-1].DayNumber, it.Days[idx-1].Date)
		}
		gap, err := utils.DaysBetween(it.Days[idx].Date, newStart)
		if err != nil {
			return nil, err
		}
		if moves, err = Shift(it, idx, gap); err != nil {
			return nil, err
		}
	}
	it.Status = models.StatusOnGoing
	return moves, nil
}

// Shift moves days[from:] by gap days, along with the end date and, when
// from is 0, the start date. Reservations of PENDING stops on shifted days
// get the new dates; the returned moves carry the old ones.
func Shift(it *models.Itinerary, from, gap int) ([]Move, error) {
	if gap == 0 {
		return nil, nil
	}
	var moves []Move
	for di := from; di < len(it.Days); di++ {
		day := &it.Days[di]
		d, err := utils.AddDays(day.Date, gap)
		if err != nil {
			return nil, err
		}
		day.Date = d

		for si := range day.Stops {
			stop := &day.Stops[si]
			if stop.Reservation == nil || stop.Status != models.StopPending {
				continue
			}
			old := *stop.Reservation
			old.Dates = append([]string(nil), stop.Reservation.Dates...)
			for i, rd := range stop.Reservation.Dates {
				if stop.Reservation.Dates[i], err = utils.AddDays(rd, gap); err != nil {
					return nil, err
				}
			}
			moves = append(moves, Move{DayIndex: di, StopIndex: si, Old: old})
		}
	}

	end, err := utils.AddDays(it.EndDate, gap)
	if err != nil {
		return nil, err
	}
	it.EndDate = end
	if from == 0 {
		start, err := utils.AddDays(it.StartDate, gap)
		if err != nil {
			return nil, err
		}
		it.StartDate = start
	}
	return moves, nil
}

// Cancel moves any live itinerary to CANCELLED and returns the reservations
// of PENDING stops to hand back.
func Cancel(it *models.Itinerary, userID string) ([]models.Reservation, error) {
	if err := requireOwner(it, userID); err != nil {
		return nil, err
	}
	if err := requireLive(it); err != nil {
		return nil, err
	}
	held := PendingReservations(it)
	it.Status = models.StatusCancelled
	return held, nil
}

// PendingReservations lists the ledger holds of stops not yet visited.
func PendingReservations(it *models.Itinerary) []models.Reservation {
	var out []models.Reservation
	for _, d := range it.Days {
		for _, s := range d.Stops {
			if s.Reservation != nil && s.Status == models.StopPending {
				out = append(out, *s.Reservation)
			}
		}
	}
	return out
}

type CheckInInput struct {
	ActualCost   *int64 `json:"actual_cost,omitempty"`
	IsTotalBill  bool   `json:"is_total_bill"`
	CheckInImage string `json:"check_in_image,omitempty"`
}

func pendingStop(it *models.Itinerary, userID, stopID string) (*models.Stop, error) {
	if err := requireMember(it, userID); err != nil {
		return nil, err
	}
	if err := requireLive(it); err != nil {
		return nil, err
	}
	di, si := it.FindStop(stopID)
	if di < 0 {
		return nil, errs.NotFound("stop %s not found", stopID)
	}
	stop := &it.Days[di].Stops[si]
	if stop.Status != models.StopPending {
		return nil, errs.Validation("stop is already %s", stop.Status)
	}
	return stop, nil
}

// CheckIn marks a PENDING stop ARRIVED. A total bill on a PER_PERSON stop is
// divided by headcount before it replaces the estimate.
func CheckIn(it *models.Itinerary, userID, stopID string, in CheckInInput, now time.Time) error {
	stop, err := pendingStop(it, userID, stopID)
	if err != nil {
		return err
	}
	if in.ActualCost != nil && *in.ActualCost < 0 {
		return errs.Validation("actual_cost must not be negative")
	}

	stop.Status = models.StopArrived
	arrived := now.UTC()
	stop.ActualArrivalTime = &arrived
	if in.ActualCost != nil {
		cost := *in.ActualCost
		if in.IsTotalBill && stop.CostType == models.CostPerPerson {
			cost = decimal.NewFromInt(cost).Div(decimal.NewFromInt(int64(it.Headcount()))).Round(0).IntPart()
		}
		stop.ActualCost = cost
		stop.EstimatedCost = cost
		stop.IsManualCost = true
	}
	if in.CheckInImage != "" {
		stop.CheckInImage = in.CheckInImage
	}
	UpdateProgress(it)
	return nil
}

// Skip marks a PENDING stop SKIPPED, zeroes its cost and returns the
// reservation it held, if any.
func Skip(it *models.Itinerary, userID, stopID string) (*models.Reservation, error) {
	stop, err := pendingStop(it, userID, stopID)
	if err != nil {
		return nil, err
	}
	held := stop.Reservation
	stop.Reservation = nil
	stop.Status = models.StopSkipped
	stop.EstimatedCost = 0
	stop.IsManualCost = true
	UpdateProgress(it)
	return held, nil
}

// UpdateProgress recounts stops and completes the trip once every stop is done.
func UpdateProgress(it *models.Itinerary) {
	total, done := 0, 0
	for _, d := range it.Days {
		for _, s := range d.Stops {
			total++
			if s.Done() {
				done++
			}
		}
	}
	it.TotalStops = total
	it.CompletedStops = done
	if total > 0 && done == total && !it.Status.Terminal() {
		it.Status = models.StatusCompleted
	}
}
