package journey

import (
	"itinera/models"
	"itinera/scheduler"
	"itinera/tracking"
)

type CreateRequest struct {
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	StartDate           string            `json:"start_date"`
	EndDate             string            `json:"end_date"`
	BudgetLimit         int64             `json:"budget_limit"`
	Visibility          models.Visibility `json:"visibility"`
	PlannedMembersCount int               `json:"planned_members_count"`
	Members             []string          `json:"members"`
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	Name                *string            `json:"name,omitempty"`
	Description         *string            `json:"description,omitempty"`
	BudgetLimit         *int64             `json:"budget_limit,omitempty"`
	Visibility          *models.Visibility `json:"visibility,omitempty"`
	PlannedMembersCount *int               `json:"planned_members_count,omitempty"`
	EndDate             *string            `json:"end_date,omitempty"`
}

type ReservationRequest struct {
	UnitID   string `json:"unit_id"`
	Nights   int    `json:"nights"`
	TimeSlot string `json:"time_slot"`
}

type AddStopRequest struct {
	DayNumber int    `json:"day_number"`
	PlaceID   string `json:"place_id"`
	// Index is the 0-based position in the day; nil appends.
	Index         *int            `json:"index,omitempty"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	Note          string          `json:"note"`
	EstimatedCost *int64          `json:"estimated_cost,omitempty"`
	CostType      models.CostType `json:"cost_type"`

	TransitMode            models.TransitMode `json:"transit_mode"`
	TransitDurationMinutes int                `json:"transit_duration_minutes"`
	TransitDistanceKm      float64            `json:"transit_distance_km"`
	TransitDetail          string             `json:"transit_detail"`

	Reservation *ReservationRequest `json:"reservation,omitempty"`
}

type MoveStopRequest struct {
	FromDay   int `json:"from_day"`
	FromIndex int `json:"from_index"`
	ToDay     int `json:"to_day"`
	ToIndex   int `json:"to_index"`
}

// UpdateTransitRequest pins a manual leg. Auto hands the leg back to the scheduler.
type UpdateTransitRequest struct {
	Mode            models.TransitMode `json:"mode"`
	DurationMinutes int                `json:"duration_minutes"`
	DistanceKm      float64            `json:"distance_km"`
	Detail          string             `json:"detail"`
	Auto            bool               `json:"auto"`
}

type StartRequest struct {
	Schedule bool `json:"schedule"`
}

type ResumeRequest struct {
	NewStartDate string `json:"new_start_date"`
}

type CheckInRequest = tracking.CheckInInput

// Result is what every mutation answers with.
type Result struct {
	Itinerary *models.Itinerary   `json:"itinerary"`
	Warnings  []scheduler.Warning `json:"warnings"`
}
