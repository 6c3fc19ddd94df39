// Package ledger tracks finite per-date capacity of inventory units and
// hands out reservations against it.
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"itinera/errs"
	"itinera/logging"
	"itinera/models"
	"itinera/utils"
)

type Ledger struct {
	store  Store
	logger *zap.Logger
}

func New(store Store, logger *zap.Logger) *Ledger {
	return &Ledger{store: store, logger: logging.OrNop(logger)}
}

// DayAvailability is one date of a unit's calendar.
type DayAvailability struct {
	Date      string `json:"date"`
	Available int    `json:"available_count"`
	Price     int64  `json:"price"`
	IsFull    bool   `json:"is_full"`
}

type UnitAvailability struct {
	Unit               models.InventoryUnit `json:"unit"`
	Days               []DayAvailability    `json:"days"`
	IsAvailableAllDays bool                 `json:"is_available_all_days"`
}

// CreateUnit validates and stores a new unit, assigning an id when missing.
func (l *Ledger) CreateUnit(ctx context.Context, unit models.InventoryUnit) (models.InventoryUnit, error) {
	unit.Name = strings.TrimSpace(unit.Name)
	switch {
	case unit.PlaceID == "":
		return unit, errs.Validation("place_id is required")
	case unit.TotalInventory < 1:
		return unit, errs.Validation("total_inventory must be at least 1")
	case unit.BasePrice < 0:
		return unit, errs.Validation("base_price must not be negative")
	}
	if unit.UnitType == "" {
		unit.UnitType = models.UnitRoom
	}
	if unit.UnitType != models.UnitRoom && unit.UnitType != models.UnitHouse && unit.UnitType != models.UnitTable {
		return unit, errs.Validation("unknown unit_type %q", unit.UnitType)
	}
	if unit.Capacity < 1 {
		unit.Capacity = 1
	}
	if unit.UnitID == "" {
		unit.UnitID = utils.GetUUID()
	}
	if err := l.store.CreateUnit(ctx, unit); err != nil {
		return unit, err
	}
	l.logger.Info("inventory unit created", zap.String("unit_id", unit.UnitID), zap.String("place_id", unit.PlaceID))
	return unit, nil
}

func (l *Ledger) GetUnit(ctx context.Context, unitID string) (models.InventoryUnit, error) {
	return l.store.GetUnit(ctx, unitID)
}

func (l *Ledger) UnitsByPlace(ctx context.Context, placeID string) ([]models.InventoryUnit, error) {
	return l.store.UnitsByPlace(ctx, placeID)
}

// Reserve takes one unit of capacity on date/slot. It fails with errs.ErrFull
// when the record has nothing left.
func (l *Ledger) Reserve(ctx context.Context, unitID, date, slot string) error {
	if _, err := utils.ParseDate(date); err != nil {
		return err
	}
	unit, err := l.store.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}
	return l.store.Increment(ctx, unit, date, slot)
}

// Release gives back qty units (1 when qty <= 0). Over-release is clamped.
func (l *Ledger) Release(ctx context.Context, unitID, date, slot string, qty int) error {
	if qty <= 0 {
		qty = 1
	}
	return l.store.Decrement(ctx, unitID, date, slot, qty)
}

// stayDates lists the dates a reservation on unit holds. Multi-night units
// hold [checkIn, checkIn+nights); tables hold checkIn only.
func stayDates(unit models.InventoryUnit, checkIn string, nights int) ([]string, error) {
	if !unit.UnitType.MultiNight() || nights < 1 {
		nights = 1
	}
	dates := make([]string, 0, nights)
	for i := 0; i < nights; i++ {
		d, err := utils.AddDays(checkIn, i)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// ReserveStay reserves every date of a stay or none of them.
func (l *Ledger) ReserveStay(ctx context.Context, unitID, checkIn string, nights int, slot string) (*models.Reservation, error) {
	unit, err := l.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	dates, err := stayDates(unit, checkIn, nights)
	if err != nil {
		return nil, err
	}
	if unit.UnitType.MultiNight() {
		slot = ""
	}

	res := &models.Reservation{UnitID: unit.UnitID, TimeSlot: slot, Quantity: 1}
	for _, d := range dates {
		if err := l.store.Increment(ctx, unit, d, slot); err != nil {
			l.ReleaseReservation(ctx, res)
			if errors.Is(err, errs.ErrFull) {
				return nil, errs.Full("%s is fully booked on %s", unit.Name, d)
			}
			return nil, err
		}
		res.Dates = append(res.Dates, d)
	}
	return res, nil
}

// ReleaseReservation gives back every date of res. Failures are logged and
// returned joined; cleanup callers may ignore the result.
func (l *Ledger) ReleaseReservation(ctx context.Context, res *models.Reservation) error {
	if res == nil {
		return nil
	}
	var failed []error
	for _, d := range res.Dates {
		if err := l.Release(ctx, res.UnitID, d, res.TimeSlot, res.Quantity); err != nil {
			l.logger.Warn("release failed",
				zap.String("unit_id", res.UnitID), zap.String("date", d), zap.Error(err))
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

// QueryAvailability returns each unit of a place with its per-date capacity
// and effective price for from..to inclusive.
func (l *Ledger) QueryAvailability(ctx context.Context, placeID, from, to string) ([]UnitAvailability, error) {
	dates, err := utils.DateRange(from, to)
	if err != nil {
		return nil, err
	}
	units, err := l.store.UnitsByPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}

	out := make([]UnitAvailability, 0, len(units))
	for _, unit := range units {
		records, err := l.store.Records(ctx, unit.UnitID, "", from, to)
		if err != nil {
			return nil, err
		}
		byDate := make(map[string]models.AvailabilityRecord, len(records))
		for _, r := range records {
			byDate[r.Date] = r
		}

		ua := UnitAvailability{Unit: unit, IsAvailableAllDays: true}
		for _, d := range dates {
			day := DayAvailability{Date: d, Available: unit.TotalInventory, Price: unit.BasePrice}
			if r, ok := byDate[d]; ok {
				day.Available = r.AvailableCount
				if r.PriceOverride > 0 {
					day.Price = r.PriceOverride
				}
			}
			day.IsFull = day.Available <= 0
			if day.IsFull {
				ua.IsAvailableAllDays = false
			}
			ua.Days = append(ua.Days, day)
		}
		out = append(out, ua)
	}
	return out, nil
}

// HasCapacity reports whether any unit of the place has room on date.
// Places without inventory are always open.
func (l *Ledger) HasCapacity(ctx context.Context, placeID, date string) (bool, error) {
	avail, err := l.QueryAvailability(ctx, placeID, date, date)
	if err != nil {
		return false, err
	}
	if len(avail) == 0 {
		return true, nil
	}
	for _, ua := range avail {
		if ua.IsAvailableAllDays {
			return true, nil
		}
	}
	return false, nil
}

// NightlyRate averages the effective price over dates, rounded half up.
// With no dates it is the base price.
func (l *Ledger) NightlyRate(ctx context.Context, unit models.InventoryUnit, dates []string) (int64, error) {
	if len(dates) == 0 {
		return unit.BasePrice, nil
	}
	from, to := dates[0], dates[0]
	for _, d := range dates {
		if d < from {
			from = d
		}
		if d > to {
			to = d
		}
	}
	records, err := l.store.Records(ctx, unit.UnitID, "", from, to)
	if err != nil {
		return 0, err
	}
	overrides := make(map[string]int64, len(records))
	for _, r := range records {
		if r.PriceOverride > 0 {
			overrides[r.Date] = r.PriceOverride
		}
	}

	sum := decimal.Zero
	for _, d := range dates {
		price := unit.BasePrice
		if p, ok := overrides[d]; ok {
			price = p
		}
		sum = sum.Add(decimal.NewFromInt(price))
	}
	return sum.Div(decimal.NewFromInt(int64(len(dates)))).Round(0).IntPart(), nil
}

// SetPriceOverride sets the price of a unit on one date; 0 clears it.
func (l *Ledger) SetPriceOverride(ctx context.Context, unitID, date, slot string, price int64) error {
	if price < 0 {
		return errs.Validation("price must not be negative")
	}
	if _, err := utils.ParseDate(date); err != nil {
		return err
	}
	unit, err := l.store.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}
	return l.store.SetPriceOverride(ctx, unit, date, slot, price)
}
