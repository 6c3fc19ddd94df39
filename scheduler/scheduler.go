// Package scheduler derives transit legs and start/end times for every stop
// of an itinerary. It is a pure transform over the loaded document.
package scheduler

import (
	"fmt"
	"sort"

	"itinera/errs"
	"itinera/models"
	"itinera/transit"
)

// Policy constants.
const (
	DayStartMinutes        = 8 * 60
	GraceMinutes           = 30
	DefaultDurationMinutes = 60
	LateEndMinutes         = 22 * 60
	EarlyStartMinutes      = 5 * 60
	MaxStopsPerDay         = 8
	ShortStopMinutes       = 30
)

type options struct {
	userEndTimes map[string]bool
}

type Option func(*options)

// WithUserEndTime marks stopID's end time as supplied by the caller in the
// current mutation. If it ends before its computed start, Recalculate fails.
func WithUserEndTime(stopID string) Option {
	return func(o *options) {
		if o.userEndTimes == nil {
			o.userEndTimes = make(map[string]bool)
		}
		o.userEndTimes[stopID] = true
	}
}

// Warning is a non-fatal scheduling observation for one day.
type Warning struct {
	DayNumber int    `json:"day_number"`
	Message   string `json:"message"`
}

type Result struct {
	Warnings []Warning `json:"warnings"`
}

// Recalculate sorts days, then rewrites transit, times and sequences of every
// stop in place. places must contain the stops' places; missing ones fall
// back to flat transit. On a hard conflict it returns a validation error and
// the itinerary must be discarded by the caller.
func Recalculate(it *models.Itinerary, places map[string]models.Place, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sort.SliceStable(it.Days, func(i, j int) bool { return it.Days[i].DayNumber < it.Days[j].DayNumber })

	var res Result
	var prev *models.Stop
	for di := range it.Days {
		day := &it.Days[di]
		day.Warnings = nil

		var (
			prevEnd    int
			firstStart = -1
			lastEnd    = -1
		)
		for si := range day.Stops {
			stop := &day.Stops[si]
			stop.Sequence = si + 1

			start, err := scheduleStart(stop, prev, si == 0, prevEnd, places)
			if err != nil {
				return Result{}, err
			}

			storedEnd, hasEnd, err := ParseClock(stop.EndTime)
			if err != nil {
				return Result{}, err
			}
			if o.userEndTimes[stop.StopID] && hasEnd && storedEnd < start {
				return Result{}, errs.Validation("end time %s of stop %d on day %d is before its computed start %s",
					stop.EndTime, stop.Sequence, day.DayNumber, FormatClock(start))
			}
			end := start + DefaultDurationMinutes
			if hasEnd && storedEnd > start {
				end = storedEnd
			}

			stop.StartTime = FormatClock(start)
			stop.EndTime = FormatClock(end)

			if firstStart < 0 {
				firstStart = start
			}
			lastEnd = end
			if end-start < ShortStopMinutes {
				day.Warnings = append(day.Warnings, fmt.Sprintf("stop %d lasts only %d minutes", stop.Sequence, end-start))
			}

			prevEnd = end
			prev = stop
		}

		if len(day.Stops) > 0 {
			if lastEnd > LateEndMinutes {
				day.Warnings = append(day.Warnings, "day ends after 22:00")
			}
			if firstStart < EarlyStartMinutes {
				day.Warnings = append(day.Warnings, "day starts before 05:00")
			}
			if len(day.Stops) > MaxStopsPerDay {
				day.Warnings = append(day.Warnings, fmt.Sprintf("day has %d stops, more than %d", len(day.Stops), MaxStopsPerDay))
			}
		}
		for _, w := range day.Warnings {
			res.Warnings = append(res.Warnings, Warning{DayNumber: day.DayNumber, Message: w})
		}
	}
	return res, nil
}

// scheduleStart sets the stop's transit and returns its start in minutes.
// The first stop of a later day leaves from the previous day's last place
// but its clock starts at DayStartMinutes.
func scheduleStart(stop, prev *models.Stop, firstOfDay bool, prevEnd int, places map[string]models.Place) (int, error) {
	chosen, hasStart, err := ParseClock(stop.StartTime)
	if err != nil {
		return 0, err
	}

	if prev == nil {
		stop.Transit = nil
		if !hasStart {
			return DayStartMinutes, nil
		}
		return chosen, nil
	}

	var leg models.TransitInfo
	if stop.IsManualTransit && stop.Transit != nil && stop.Transit.DurationMinutes > 0 {
		leg = *stop.Transit
		if leg.Mode == "" {
			leg.Mode = models.ModeDriving
		}
		leg.FromPlaceID = prev.PlaceID
	} else {
		var mode models.TransitMode
		if stop.Transit != nil {
			mode = stop.Transit.Mode
		}
		leg = transit.Leg(places[prev.PlaceID], places[stop.PlaceID], mode)
		leg.FromPlaceID = prev.PlaceID
	}
	stop.Transit = &leg

	base := prevEnd
	if firstOfDay {
		base = DayStartMinutes
	}
	arrival := base + leg.DurationMinutes

	if hasStart {
		gap := chosen - arrival
		if gap >= 0 && gap <= GraceMinutes {
			return chosen, nil
		}
	}
	return arrival, nil
}
