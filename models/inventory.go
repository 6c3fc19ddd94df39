package models

type UnitType string

const (
	UnitRoom  UnitType = "ROOM"
	UnitHouse UnitType = "HOUSE"
	UnitTable UnitType = "TABLE"
)

// MultiNight reports whether a reservation on this unit spans nights.
func (t UnitType) MultiNight() bool {
	return t == UnitRoom || t == UnitHouse
}

// InventoryUnit is a bookable kind of capacity at a place (a room type, a table size).
type InventoryUnit struct {
	UnitID         string   `json:"unitid" bson:"unitid"`
	PlaceID        string   `json:"place_id" bson:"place_id"`
	UnitType       UnitType `json:"unit_type" bson:"unit_type"`
	Name           string   `json:"name" bson:"name"`
	BasePrice      int64    `json:"base_price" bson:"base_price"`
	Capacity       int      `json:"capacity" bson:"capacity"`
	TotalInventory int      `json:"total_inventory" bson:"total_inventory"`
}

// AvailabilityRecord counts bookings of one unit on one date and optional slot.
type AvailabilityRecord struct {
	UnitID         string `json:"unit_id" bson:"unit_id"`
	Date           string `json:"date" bson:"date"`
	TimeSlot       string `json:"time_slot" bson:"time_slot"`
	BookedCount    int    `json:"booked_count" bson:"booked_count"`
	AvailableCount int    `json:"available_count" bson:"available_count"`
	TotalInventory int    `json:"total_inventory" bson:"total_inventory"`
	PriceOverride  int64  `json:"price_override,omitempty" bson:"price_override,omitempty"`
}

// Reservation records ledger holds taken on behalf of a stop.
type Reservation struct {
	UnitID   string   `json:"unit_id" bson:"unit_id"`
	Dates    []string `json:"dates" bson:"dates"`
	TimeSlot string   `json:"time_slot,omitempty" bson:"time_slot,omitempty"`
	Quantity int      `json:"quantity" bson:"quantity"`
}

// Nights is the number of dates held.
func (r *Reservation) Nights() int {
	if r == nil {
		return 0
	}
	return len(r.Dates)
}
