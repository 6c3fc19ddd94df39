package ledger

import (
	"context"
	"sort"
	"sync"

	"itinera/errs"
	"itinera/models"
)

type recordKey struct {
	unitID, date, slot string
}

// MemoryStore is a mutex-guarded Store for tests and STORAGE=memory.
type MemoryStore struct {
	mu      sync.Mutex
	units   map[string]models.InventoryUnit
	records map[recordKey]*models.AvailabilityRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		units:   make(map[string]models.InventoryUnit),
		records: make(map[recordKey]*models.AvailabilityRecord),
	}
}

func (s *MemoryStore) CreateUnit(_ context.Context, unit models.InventoryUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[unit.UnitID]; ok {
		return errs.Conflict("unit %s already exists", unit.UnitID)
	}
	s.units[unit.UnitID] = unit
	return nil
}

func (s *MemoryStore) GetUnit(_ context.Context, unitID string) (models.InventoryUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[unitID]
	if !ok {
		return unit, errs.NotFound("inventory unit %s not found", unitID)
	}
	return unit, nil
}

func (s *MemoryStore) UnitsByPlace(_ context.Context, placeID string) ([]models.InventoryUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	units := []models.InventoryUnit{}
	for _, u := range s.units {
		if u.PlaceID == placeID {
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i].BasePrice != units[j].BasePrice {
			return units[i].BasePrice < units[j].BasePrice
		}
		return units[i].UnitID < units[j].UnitID
	})
	return units, nil
}

// record returns the record for k, creating it when absent. Caller holds mu.
func (s *MemoryStore) record(unit models.InventoryUnit, date, slot string) *models.AvailabilityRecord {
	k := recordKey{unit.UnitID, date, slot}
	rec, ok := s.records[k]
	if !ok {
		rec = &models.AvailabilityRecord{
			UnitID:         unit.UnitID,
			Date:           date,
			TimeSlot:       slot,
			AvailableCount: unit.TotalInventory,
			TotalInventory: unit.TotalInventory,
		}
		s.records[k] = rec
	}
	return rec
}

func (s *MemoryStore) Increment(_ context.Context, unit models.InventoryUnit, date, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.record(unit, date, slot)
	if rec.AvailableCount <= 0 {
		return errs.ErrFull
	}
	rec.BookedCount++
	rec.AvailableCount--
	return nil
}

func (s *MemoryStore) Decrement(_ context.Context, unitID, date, slot string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordKey{unitID, date, slot}]
	if !ok {
		return nil
	}
	if rec.BookedCount < qty {
		qty = rec.BookedCount
	}
	rec.BookedCount -= qty
	rec.AvailableCount += qty
	return nil
}

func (s *MemoryStore) Records(_ context.Context, unitID, slot, from, to string) ([]models.AvailabilityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AvailabilityRecord
	for k, rec := range s.records {
		if k.unitID == unitID && k.slot == slot && k.date >= from && k.date <= to {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *MemoryStore) SetPriceOverride(_ context.Context, unit models.InventoryUnit, date, slot string, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(unit, date, slot).PriceOverride = price
	return nil
}
