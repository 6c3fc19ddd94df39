package ledger

import (
	"context"

	"itinera/models"
)

// Store persists inventory units and per-date availability counters.
// Increment must be atomic per (unit, date, slot) key: concurrent callers
// against the last unit of capacity see exactly one success.
type Store interface {
	CreateUnit(ctx context.Context, unit models.InventoryUnit) error
	GetUnit(ctx context.Context, unitID string) (models.InventoryUnit, error)
	UnitsByPlace(ctx context.Context, placeID string) ([]models.InventoryUnit, error)

	// Increment takes one unit of capacity, creating the record on first touch.
	// It returns errs.ErrFull when nothing is left.
	Increment(ctx context.Context, unit models.InventoryUnit, date, slot string) error
	// Decrement gives back qty units, clamping at zero bookings. Missing records are a no-op.
	Decrement(ctx context.Context, unitID, date, slot string, qty int) error
	// Records lists the existing records of a unit and slot with from <= date <= to.
	Records(ctx context.Context, unitID, slot, from, to string) ([]models.AvailabilityRecord, error)
	SetPriceOverride(ctx context.Context, unit models.InventoryUnit, date, slot string, price int64) error
}
