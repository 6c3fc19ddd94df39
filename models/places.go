package models

// Place is the read-only catalog view used for transit and cost estimation.
type Place struct {
	PlaceID  string       `json:"placeid" bson:"placeid"`
	Name     string       `json:"name" bson:"name"`
	Category string       `json:"category" bson:"category"`
	Address  string       `json:"address,omitempty" bson:"address,omitempty"`
	City     string       `json:"city,omitempty" bson:"city,omitempty"`
	Location *Coordinates `json:"location,omitempty" bson:"location,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Place categories that drive cost classification.
const (
	CategoryAccommodation = "ACCOMMODATION"
	CategoryHotel         = "HOTEL"
	CategoryHostel        = "HOSTEL"
	CategoryHomestay      = "HOMESTAY"
	CategoryResort        = "RESORT"
	CategoryGuestHouse    = "GUEST_HOUSE"

	CategoryRestaurant = "RESTAURANT"
	CategoryCafe       = "CAFE"
	CategoryBarPub     = "BAR_PUB"
	CategoryStreetFood = "STREET_FOOD"

	CategorySightseeing = "SIGHTSEEING"
	CategoryHiking      = "HIKING"
	CategoryTour        = "TOUR"
	CategoryExperience  = "EXPERIENCE"
	CategoryAdventure   = "ADVENTURE"

	CategoryTransport   = "TRANSPORT"
	CategoryHealth      = "HEALTH"
	CategoryFinance     = "FINANCE"
	CategoryConvenience = "CONVENIENCE"
	CategoryLaundry     = "LAUNDRY"
)
