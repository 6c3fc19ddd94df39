package journey

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"itinera/errs"
	"itinera/models"
	"itinera/scheduler"
	"itinera/transit"
	"itinera/utils"
)

func defaultCostType(mode models.TransitMode) models.CostType {
	if mode == models.ModeDriving || mode == models.ModeBoat {
		return models.CostShared
	}
	return models.CostPerPerson
}

func validCostType(c models.CostType) bool {
	return c == models.CostShared || c == models.CostPerPerson
}

// AddStop inserts a stop into a day. A requested reservation is taken after
// scheduling; without one, a place whose every unit is full that day is refused.
func (s *Service) AddStop(ctx context.Context, userID, itineraryID string, req AddStopRequest) (*Result, error) {
	it, err := s.loadForEdit(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.PlaceID) == "" {
		return nil, errs.Validation("place_id is required")
	}
	di := it.DayIndex(req.DayNumber)
	if di < 0 {
		return nil, errs.Validation("day %d does not exist", req.DayNumber)
	}
	for _, t := range []string{req.StartTime, req.EndTime} {
		if err := scheduler.ValidateClock(t); err != nil {
			return nil, err
		}
	}
	if req.EstimatedCost != nil && *req.EstimatedCost < 0 {
		return nil, errs.Validation("estimated_cost must not be negative")
	}
	mode := req.TransitMode
	if mode == "" {
		mode = models.ModeDriving
	}
	if !transit.ValidMode(mode) {
		return nil, errs.Validation("unknown transit mode %q", mode)
	}
	costType := req.CostType
	if costType == "" {
		costType = defaultCostType(mode)
	}
	if !validCostType(costType) {
		return nil, errs.Validation("unknown cost_type %q", costType)
	}

	place, err := s.catalog.GetPlace(ctx, req.PlaceID)
	if err != nil {
		return nil, err
	}
	day := &it.Days[di]

	if req.Reservation == nil {
		ok, err := s.inventory.HasCapacity(ctx, place.PlaceID, day.Date)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.Full("%s is fully booked on %s", place.Name, day.Date)
		}
	} else {
		unit, err := s.inventory.GetUnit(ctx, req.Reservation.UnitID)
		if err != nil {
			return nil, err
		}
		if unit.PlaceID != place.PlaceID {
			return nil, errs.Validation("unit %s does not belong to place %s", unit.UnitID, place.PlaceID)
		}
	}

	stop := models.Stop{
		StopID:    utils.GetUUID(),
		PlaceID:   place.PlaceID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Note:      strings.TrimSpace(req.Note),
		CostType:  costType,
		Status:    models.StopPending,
		Transit:   &models.TransitInfo{Mode: mode},
	}
	if req.EstimatedCost != nil {
		stop.EstimatedCost = *req.EstimatedCost
		stop.IsManualCost = true
	}
	if req.TransitDurationMinutes > 0 {
		stop.IsManualTransit = true
		stop.Transit = &models.TransitInfo{
			Mode:            mode,
			DistanceKm:      req.TransitDistanceKm,
			DurationMinutes: req.TransitDurationMinutes,
			Detail:          req.TransitDetail,
		}
	}

	at := len(day.Stops)
	if req.Index != nil {
		if *req.Index < 0 || *req.Index > len(day.Stops) {
			return nil, errs.Validation("index %d out of range for day %d", *req.Index, req.DayNumber)
		}
		at = *req.Index
	}
	day.Stops = insertStop(day.Stops, at, stop)

	ch := change{
		title:     "Stop added",
		message:   fmt.Sprintf("%s added to day %d", place.Name, req.DayNumber),
		dayNumber: req.DayNumber,
	}
	if req.EndTime != "" {
		ch.opts = append(ch.opts, scheduler.WithUserEndTime(stop.StopID))
	}
	if rr := req.Reservation; rr != nil {
		ch.reserve = func(ctx context.Context, it *models.Itinerary, _ func(int, string)) (func(context.Context), error) {
			d, si := it.FindStop(stop.StopID)
			target := &it.Days[d].Stops[si]
			// an empty slot books the whole day
			held, err := s.inventory.ReserveStay(ctx, rr.UnitID, it.Days[d].Date, rr.Nights, rr.TimeSlot)
			if err != nil {
				return nil, err
			}
			target.Reservation = held
			return func(ctx context.Context) { s.inventory.ReleaseReservation(ctx, held) }, nil
		}
	}
	return s.commit(ctx, userID, it, ch)
}

func insertStop(stops []models.Stop, at int, stop models.Stop) []models.Stop {
	stops = append(stops, models.Stop{})
	copy(stops[at+1:], stops[at:])
	stops[at] = stop
	return stops
}

// MoveStop moves the stop at from_day/from_index to to_day/to_index. A
// PENDING reservation follows the stop to its new date or the move is refused.
func (s *Service) MoveStop(ctx context.Context, userID, itineraryID string, req MoveStopRequest) (*Result, error) {
	it, err := s.loadForEdit(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	from, to := it.DayIndex(req.FromDay), it.DayIndex(req.ToDay)
	if from < 0 || to < 0 {
		return nil, errs.Validation("day does not exist")
	}
	if req.FromIndex < 0 || req.FromIndex >= len(it.Days[from].Stops) {
		return nil, errs.Validation("from_index %d out of range", req.FromIndex)
	}

	stop := it.Days[from].Stops[req.FromIndex]
	src := it.Days[from].Stops
	it.Days[from].Stops = append(src[:req.FromIndex:req.FromIndex], src[req.FromIndex+1:]...)

	dst := it.Days[to].Stops
	if req.ToIndex < 0 || req.ToIndex > len(dst) {
		return nil, errs.Validation("to_index %d out of range", req.ToIndex)
	}
	it.Days[to].Stops = insertStop(dst, req.ToIndex, stop)

	ch := change{
		title:     "Stop moved",
		message:   fmt.Sprintf("a stop moved from day %d to day %d", req.FromDay, req.ToDay),
		dayNumber: req.ToDay,
	}
	if from != to && stop.Reservation != nil && stop.Status == models.StopPending {
		old := *stop.Reservation
		ch.reserve = func(ctx context.Context, it *models.Itinerary, _ func(int, string)) (func(context.Context), error) {
			d, si := it.FindStop(stop.StopID)
			target := &it.Days[d].Stops[si]
			moved, err := s.relocate(ctx, old, it.Days[d].Date)
			if err != nil {
				return nil, err
			}
			target.Reservation = moved
			return func(ctx context.Context) { s.relocateBack(ctx, moved, old) }, nil
		}
	}
	return s.commit(ctx, userID, it, ch)
}

// relocate moves a reservation to start on date, restoring the old hold when
// the new dates are not available.
func (s *Service) relocate(ctx context.Context, old models.Reservation, date string) (*models.Reservation, error) {
	if err := s.inventory.ReleaseReservation(ctx, &old); err != nil {
		return nil, errs.Internal(err, "could not release reservation")
	}
	moved, err := s.inventory.ReserveStay(ctx, old.UnitID, date, old.Nights(), old.TimeSlot)
	if err != nil {
		s.relocateBack(ctx, nil, old)
		return nil, err
	}
	return moved, nil
}

func (s *Service) relocateBack(ctx context.Context, moved *models.Reservation, old models.Reservation) {
	if moved != nil {
		s.inventory.ReleaseReservation(ctx, moved)
	}
	if len(old.Dates) == 0 {
		return
	}
	if _, err := s.inventory.ReserveStay(ctx, old.UnitID, old.Dates[0], len(old.Dates), old.TimeSlot); err != nil {
		s.logger.Error("could not restore reservation",
			zap.String("unit_id", old.UnitID), zap.Strings("dates", old.Dates), zap.Error(err))
	}
}

// RemoveStop drops a stop from a day and returns its PENDING reservation.
func (s *Service) RemoveStop(ctx context.Context, userID, itineraryID string, dayNumber int, stopID string) (*Result, error) {
	it, err := s.loadForEdit(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	di := it.DayIndex(dayNumber)
	if di < 0 {
		return nil, errs.Validation("day %d does not exist", dayNumber)
	}
	day := &it.Days[di]
	si := -1
	for i := range day.Stops {
		if day.Stops[i].StopID == stopID {
			si = i
			break
		}
	}
	if si < 0 {
		return nil, errs.NotFound("stop %s not found on day %d", stopID, dayNumber)
	}

	removed := day.Stops[si]
	day.Stops = append(day.Stops[:si:si], day.Stops[si+1:]...)

	ch := change{title: "Stop removed", message: fmt.Sprintf("a stop was removed from day %d", dayNumber), dayNumber: dayNumber}
	if removed.Reservation != nil && removed.Status == models.StopPending {
		ch.release = []models.Reservation{*removed.Reservation}
	}
	return s.commit(ctx, userID, it, ch)
}

// UpdateTransit pins the leg into a stop, or hands it back to the scheduler.
func (s *Service) UpdateTransit(ctx context.Context, userID, itineraryID, stopID string, req UpdateTransitRequest) (*Result, error) {
	it, err := s.loadForEdit(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	di, si := it.FindStop(stopID)
	if di < 0 {
		return nil, errs.NotFound("stop %s not found", stopID)
	}
	mode := req.Mode
	if mode == "" {
		mode = models.ModeDriving
	}
	if !transit.ValidMode(mode) {
		return nil, errs.Validation("unknown transit mode %q", mode)
	}

	stop := &it.Days[di].Stops[si]
	if req.Auto {
		stop.IsManualTransit = false
		stop.Transit = &models.TransitInfo{Mode: mode}
	} else {
		if req.DurationMinutes <= 0 {
			return nil, errs.Validation("duration_minutes must be positive")
		}
		if req.DistanceKm < 0 {
			return nil, errs.Validation("distance_km must not be negative")
		}
		stop.IsManualTransit = true
		stop.Transit = &models.TransitInfo{
			Mode:            mode,
			DistanceKm:      req.DistanceKm,
			DurationMinutes: req.DurationMinutes,
			Detail:          strings.TrimSpace(req.Detail),
		}
	}
	return s.commit(ctx, userID, it, change{
		title:     "Transit updated",
		message:   fmt.Sprintf("transit changed on day %d", it.Days[di].DayNumber),
		dayNumber: it.Days[di].DayNumber,
	})
}
