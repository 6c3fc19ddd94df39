package journey

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"itinera/errs"
	"itinera/models"
	"itinera/tracking"
)

// rebook re-takes shifted reservations under their new dates. The old holds
// are released first; a stop whose new dates are full loses its reservation
// and the day gets a warning.
func (s *Service) rebook(moves []tracking.Move) func(context.Context, *models.Itinerary, func(int, string)) (func(context.Context), error) {
	return func(ctx context.Context, it *models.Itinerary, warn func(int, string)) (func(context.Context), error) {
		for i := range moves {
			s.inventory.ReleaseReservation(ctx, &moves[i].Old)
		}
		var taken []*models.Reservation
		for _, mv := range moves {
			day := &it.Days[mv.DayIndex]
			stop := &day.Stops[mv.StopIndex]
			if stop.Reservation == nil || len(stop.Reservation.Dates) == 0 {
				continue
			}
			res, err := s.inventory.ReserveStay(ctx, stop.Reservation.UnitID, stop.Reservation.Dates[0],
				len(stop.Reservation.Dates), stop.Reservation.TimeSlot)
			if err != nil {
				s.logger.Warn("reservation dropped after shift",
					zap.String("itinerary_id", it.ItineraryID), zap.String("stop_id", stop.StopID), zap.Error(err))
				warn(day.DayNumber, fmt.Sprintf("reservation for stop %d dropped: %s", stop.Sequence, errs.Message(err)))
				stop.Reservation = nil
				continue
			}
			stop.Reservation = res
			taken = append(taken, res)
		}
		undo := func(ctx context.Context) {
			for _, res := range taken {
				s.inventory.ReleaseReservation(ctx, res)
			}
			for _, mv := range moves {
				s.relocateBack(ctx, nil, mv.Old)
			}
		}
		return undo, nil
	}
}

func (s *Service) pauseOthers(ctx context.Context, it *models.Itinerary) {
	n, err := s.repo.PauseOthers(ctx, it.OwnerID, it.ItineraryID)
	if err != nil {
		s.logger.Warn("could not pause other trips", zap.String("owner_id", it.OwnerID), zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("paused other trips", zap.String("owner_id", it.OwnerID), zap.Int("count", n))
	}
}

// Start begins the trip today, or with schedule set marks a future trip UPCOMING.
func (s *Service) Start(ctx context.Context, userID, itineraryID string, req StartRequest) (*Result, error) {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	moves, err := tracking.Start(it, userID, s.today(), req.Schedule)
	if err != nil {
		return nil, err
	}

	ch := change{title: "Trip started", message: it.Name + " has started"}
	if it.Status == models.StatusUpcoming {
		ch.title, ch.message = "Trip scheduled", it.Name+" starts on "+it.StartDate
	} else {
		ch.after = s.pauseOthers
	}
	if len(moves) > 0 {
		ch.reserve = s.rebook(moves)
	}
	return s.commit(ctx, userID, it, ch)
}

func (s *Service) Pause(ctx context.Context, userID, itineraryID string) (*Result, error) {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if err := tracking.Pause(it, userID); err != nil {
		return nil, err
	}
	return s.commit(ctx, userID, it, change{title: "Trip paused", message: it.Name + " is paused"})
}

// Resume continues a paused trip with its first pending day on NewStartDate
// (today when empty).
func (s *Service) Resume(ctx context.Context, userID, itineraryID string, req ResumeRequest) (*Result, error) {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	start := req.NewStartDate
	if start == "" {
		start = s.today()
	}
	moves, err := tracking.Resume(it, userID, start)
	if err != nil {
		return nil, err
	}
	ch := change{title: "Trip resumed", message: it.Name + " is back on", after: s.pauseOthers}
	if len(moves) > 0 {
		ch.reserve = s.rebook(moves)
	}
	return s.commit(ctx, userID, it, ch)
}

func (s *Service) Cancel(ctx context.Context, userID, itineraryID string) (*Result, error) {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	held, err := tracking.Cancel(it, userID)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, userID, it, change{
		title:   "Trip cancelled",
		message: it.Name + " was cancelled",
		release: held,
	})
}

func (s *Service) CheckIn(ctx context.Context, userID, itineraryID, stopID string, req CheckInRequest) (*Result, error) {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if err := tracking.CheckIn(it, userID, stopID, req, s.now()); err != nil {
		return nil, err
	}
	di, _ := it.FindStop(stopID)
	ch := change{
		title:     "Checked in",
		message:   fmt.Sprintf("a stop on day %d was reached", it.Days[di].DayNumber),
		dayNumber: it.Days[di].DayNumber,
	}
	if it.Status == models.StatusCompleted {
		ch.title, ch.message = "Trip completed", it.Name+" is complete"
	}
	return s.commit(ctx, userID, it, ch)
}

func (s *Service) Skip(ctx context.Context, userID, itineraryID, stopID string) (*Result, error) {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	held, err := tracking.Skip(it, userID, stopID)
	if err != nil {
		return nil, err
	}
	di, _ := it.FindStop(stopID)
	ch := change{
		title:     "Stop skipped",
		message:   fmt.Sprintf("a stop on day %d was skipped", it.Days[di].DayNumber),
		dayNumber: it.Days[di].DayNumber,
	}
	if held != nil {
		ch.release = []models.Reservation{*held}
	}
	if it.Status == models.StatusCompleted {
		ch.title, ch.message = "Trip completed", it.Name+" is complete"
	}
	return s.commit(ctx, userID, it, ch)
}
