// Package budget estimates itinerary costs and splits them between shared
// and per-person totals.
package budget

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"itinera/errs"
	"itinera/models"
	"itinera/utils"
)

// Line item kinds.
const (
	KindAccommodation = "accommodation"
	KindDining        = "dining"
	KindActivity      = "activity"
	KindTransport     = "transport"
)

// Meals.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

// UnitSource is the slice of the inventory ledger the estimator prices stays with.
type UnitSource interface {
	GetUnit(ctx context.Context, unitID string) (models.InventoryUnit, error)
	UnitsByPlace(ctx context.Context, placeID string) ([]models.InventoryUnit, error)
	NightlyRate(ctx context.Context, unit models.InventoryUnit, dates []string) (int64, error)
}

type LineItem struct {
	DayNumber   int                `json:"day_number"`
	StopID      string             `json:"stop_id"`
	PlaceID     string             `json:"place_id"`
	PlaceName   string             `json:"place_name,omitempty"`
	Kind        string             `json:"kind"`
	Meal        string             `json:"meal,omitempty"`
	CostType    models.CostType    `json:"cost_type"`
	Amount      int64              `json:"amount"`
	Manual      bool               `json:"manual"`
	UnitID      string             `json:"unit_id,omitempty"`
	Nights      int                `json:"nights,omitempty"`
	NightlyRate int64              `json:"nightly_rate,omitempty"`
	Mode        models.TransitMode `json:"mode,omitempty"`
	DistanceKm  float64            `json:"distance_km,omitempty"`
}

// Estimate is the itemised cost of an itinerary before allocation.
type Estimate struct {
	Items            []LineItem `json:"items"`
	Headcount        int        `json:"headcount"`
	Accommodation    int64      `json:"accommodation"`
	Dining           int64      `json:"dining"`
	Activities       int64      `json:"activities"`
	SharedTransport  int64      `json:"shared_transport"`
	PrivateTransport int64      `json:"private_transport"`
	SharedStops      int64      `json:"shared_stops"`
	PersonalStops    int64      `json:"personal_stops"`
}

type Options struct {
	Headcount            int
	IncludeAccommodation bool
}

type Estimator struct {
	units UnitSource
	rates Rates
}

func NewEstimator(units UnitSource, rates Rates) *Estimator {
	return &Estimator{units: units, rates: rates}
}

var accommodationCategories = map[string]bool{
	models.CategoryAccommodation: true,
	models.CategoryHotel:         true,
	models.CategoryHostel:        true,
	models.CategoryHomestay:      true,
	models.CategoryResort:        true,
	models.CategoryGuestHouse:    true,
}

var diningCategories = map[string]bool{
	models.CategoryRestaurant: true,
	models.CategoryCafe:       true,
	models.CategoryBarPub:     true,
	models.CategoryStreetFood: true,
}

// Classify maps a place category to a line item kind.
func Classify(category string) string {
	c := strings.ToUpper(category)
	switch {
	case accommodationCategories[c]:
		return KindAccommodation
	case diningCategories[c]:
		return KindDining
	default:
		return KindActivity
	}
}

// MealFor picks the meal from a stop's start time; an unset time counts as lunch.
func MealFor(startTime string) string {
	hour := 12
	if hh, _, ok := strings.Cut(startTime, ":"); ok {
		if h, err := strconv.Atoi(hh); err == nil {
			hour = h
		}
	}
	switch {
	case hour >= 6 && hour < 11:
		return MealBreakfast
	case hour >= 11 && hour < 17:
		return MealLunch
	default:
		return MealDinner
	}
}

// Estimate prices every non-skipped stop and its inbound transit. A stop whose
// place is missing from places is an error; the caller falls back.
func (e *Estimator) Estimate(ctx context.Context, it *models.Itinerary, places map[string]models.Place, opts Options) (*Estimate, error) {
	headcount := opts.Headcount
	if headcount < 1 {
		headcount = it.Headcount()
	}
	est := &Estimate{Headcount: headcount}

	for di := range it.Days {
		day := &it.Days[di]
		for si := range day.Stops {
			stop := &day.Stops[si]
			if stop.Status == models.StopSkipped {
				continue
			}
			place, ok := places[stop.PlaceID]
			if !ok {
				return nil, errs.NotFound("place %s of stop %s not loaded", stop.PlaceID, stop.StopID)
			}

			if stop.Transit != nil {
				est.addTransport(e.transport(day.DayNumber, stop, headcount))
			}

			kind := Classify(place.Category)
			if kind == KindAccommodation {
				if !opts.IncludeAccommodation {
					continue
				}
				item, err := e.accommodation(ctx, it, di, si, places)
				if err != nil {
					return nil, err
				}
				est.Items = append(est.Items, item)
				est.Accommodation += item.Amount
				continue
			}

			item := LineItem{
				DayNumber: day.DayNumber,
				StopID:    stop.StopID,
				PlaceID:   place.PlaceID,
				PlaceName: place.Name,
				Kind:      kind,
				CostType:  stopCostType(stop),
				Manual:    stop.IsManualCost,
			}
			if kind == KindDining {
				item.Meal = MealFor(stop.StartTime)
			}
			switch {
			case stop.IsManualCost:
				item.Amount = stop.EstimatedCost
			case kind == KindDining:
				item.Amount = e.rates.meal(strings.ToUpper(place.Category), item.Meal)
			default:
				item.Amount = e.rates.activity(strings.ToUpper(place.Category))
			}

			est.Items = append(est.Items, item)
			if kind == KindDining {
				est.Dining += item.Amount
			} else {
				est.Activities += item.Amount
			}
			if item.CostType == models.CostPerPerson {
				est.PersonalStops += item.Amount
			} else {
				est.SharedStops += item.Amount
			}
		}
	}
	return est, nil
}

func stopCostType(s *models.Stop) models.CostType {
	if s.CostType == models.CostPerPerson {
		return models.CostPerPerson
	}
	return models.CostShared
}

func (est *Estimate) addTransport(item LineItem) {
	est.Items = append(est.Items, item)
	if item.CostType == models.CostShared {
		est.SharedTransport += item.Amount
	} else {
		est.PrivateTransport += item.Amount
	}
}

// transport prices the leg into stop. Driving is one shared fare; other
// modes are per-seat fares bought for everyone.
func (e *Estimator) transport(dayNumber int, stop *models.Stop, headcount int) LineItem {
	tr := stop.Transit
	fare := decimal.NewFromFloat(tr.DistanceKm).Mul(decimal.NewFromInt(e.rates.perKm(tr.Mode))).Round(0).IntPart()
	item := LineItem{
		DayNumber:  dayNumber,
		StopID:     stop.StopID,
		PlaceID:    tr.FromPlaceID,
		Kind:       KindTransport,
		Mode:       tr.Mode,
		DistanceKm: tr.DistanceKm,
		CostType:   models.CostShared,
		Amount:     fare,
	}
	if tr.Mode != models.ModeDriving && tr.Mode != "" {
		item.CostType = models.CostPerPerson
		item.Amount = fare * int64(headcount)
	}
	return item
}

func (e *Estimator) accommodation(ctx context.Context, it *models.Itinerary, di, si int, places map[string]models.Place) (LineItem, error) {
	day := &it.Days[di]
	stop := &day.Stops[si]
	place := places[stop.PlaceID]
	item := LineItem{
		DayNumber: day.DayNumber,
		StopID:    stop.StopID,
		PlaceID:   place.PlaceID,
		PlaceName: place.Name,
		Kind:      KindAccommodation,
		CostType:  models.CostShared,
		Manual:    stop.IsManualCost,
	}
	if stop.IsManualCost {
		item.Amount = stop.EstimatedCost
		return item, nil
	}

	var (
		unit  models.InventoryUnit
		dates []string
		err   error
	)
	if res := stop.Reservation; res != nil && res.UnitID != "" {
		unit, err = e.units.GetUnit(ctx, res.UnitID)
		if err != nil {
			return item, err
		}
		dates = res.Dates
	} else {
		units, err := e.units.UnitsByPlace(ctx, place.PlaceID)
		if err != nil {
			return item, err
		}
		if len(units) == 0 {
			return item, nil
		}
		unit = units[0]
		dates, err = impliedNights(it, di, places)
		if err != nil {
			return item, err
		}
	}

	rate, err := e.units.NightlyRate(ctx, unit, dates)
	if err != nil {
		return item, err
	}
	nights := len(dates)
	if nights < 1 {
		nights = 1
	}
	item.UnitID = unit.UnitID
	item.Nights = nights
	item.NightlyRate = rate
	item.Amount = rate * int64(nights)
	return item, nil
}

// impliedNights is the stay of an unreserved accommodation stop: from its day
// until the next day with an accommodation stop or the trip end, at least one night.
func impliedNights(it *models.Itinerary, di int, places map[string]models.Place) ([]string, error) {
	checkIn := it.Days[di].Date
	checkOut := it.EndDate

next:
	for dj := di + 1; dj < len(it.Days); dj++ {
		for _, s := range it.Days[dj].Stops {
			if s.Status != models.StopSkipped && Classify(places[s.PlaceID].Category) == KindAccommodation {
				checkOut = it.Days[dj].Date
				break next
			}
		}
	}

	n, err := utils.DaysBetween(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		n = 1
	}
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		d, err := utils.AddDays(checkIn, i)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}
