package models

import "time"

type ItineraryStatus string

const (
	StatusPlanning  ItineraryStatus = "PLANNING"
	StatusUpcoming  ItineraryStatus = "UPCOMING"
	StatusOnGoing   ItineraryStatus = "ON_GOING"
	StatusPaused    ItineraryStatus = "PAUSED"
	StatusCompleted ItineraryStatus = "COMPLETED"
	StatusCancelled ItineraryStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed.
func (s ItineraryStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityPublic  Visibility = "PUBLIC"
)

type StopStatus string

const (
	StopPending StopStatus = "PENDING"
	StopArrived StopStatus = "ARRIVED"
	StopSkipped StopStatus = "SKIPPED"
)

type CostType string

const (
	CostShared    CostType = "SHARED"
	CostPerPerson CostType = "PER_PERSON"
)

type TransitMode string

const (
	ModeDriving         TransitMode = "DRIVING"
	ModeWalking         TransitMode = "WALKING"
	ModePublicTransport TransitMode = "PUBLIC_TRANSPORT"
	ModeFlight          TransitMode = "FLIGHT"
	ModeBoat            TransitMode = "BOAT"
)

// Itinerary is a multi-day trip plan. Days and stops are embedded in the document.
type Itinerary struct {
	ItineraryID         string          `json:"itineraryid" bson:"itineraryid"`
	OwnerID             string          `json:"owner_id" bson:"owner_id"`
	Name                string          `json:"name" bson:"name"`
	Description         string          `json:"description,omitempty" bson:"description,omitempty"`
	Members             []string        `json:"members" bson:"members"`
	PlannedMembersCount int             `json:"planned_members_count" bson:"planned_members_count"`
	StartDate           string          `json:"start_date" bson:"start_date"`
	EndDate             string          `json:"end_date" bson:"end_date"`
	BudgetLimit         int64           `json:"budget_limit" bson:"budget_limit"`
	Visibility          Visibility      `json:"visibility" bson:"visibility"`
	Status              ItineraryStatus `json:"status" bson:"status"`
	Days                []Day           `json:"days" bson:"days"`
	TotalBudget         int64           `json:"total_budget" bson:"total_budget"`
	CostPerPerson       int64           `json:"cost_per_person" bson:"cost_per_person"`
	BudgetAnalysis      BudgetBreakdown `json:"budget_analysis" bson:"budget_analysis"`
	CompletedStops      int             `json:"completed_stops_count" bson:"completed_stops_count"`
	TotalStops          int             `json:"total_stops_count" bson:"total_stops_count"`
	GroupID             string          `json:"group_id,omitempty" bson:"group_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" bson:"updated_at"`
}

// IsMember reports whether userID is the owner or a listed member.
func (it *Itinerary) IsMember(userID string) bool {
	if userID == "" {
		return false
	}
	if it.OwnerID == userID {
		return true
	}
	for _, m := range it.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Headcount is max(members, planned members, 1).
func (it *Itinerary) Headcount() int {
	n := len(it.Members)
	if it.PlannedMembersCount > n {
		n = it.PlannedMembersCount
	}
	if n < 1 {
		n = 1
	}
	return n
}

// FindStop returns the day index and stop index of stopID, or -1, -1.
func (it *Itinerary) FindStop(stopID string) (int, int) {
	for di := range it.Days {
		for si := range it.Days[di].Stops {
			if it.Days[di].Stops[si].StopID == stopID {
				return di, si
			}
		}
	}
	return -1, -1
}

// DayIndex returns the index of the day with the given 1-based number, or -1.
func (it *Itinerary) DayIndex(dayNumber int) int {
	for i := range it.Days {
		if it.Days[i].DayNumber == dayNumber {
			return i
		}
	}
	return -1
}

type Day struct {
	DayID     string   `json:"dayid" bson:"dayid"`
	DayNumber int      `json:"day_number" bson:"day_number"`
	Date      string   `json:"date" bson:"date"`
	Stops     []Stop   `json:"stops" bson:"stops"`
	Warnings  []string `json:"warnings,omitempty" bson:"-"`
}

type Stop struct {
	StopID            string       `json:"stopid" bson:"stopid"`
	PlaceID           string       `json:"place_id" bson:"place_id"`
	Sequence          int          `json:"sequence" bson:"sequence"`
	StartTime         string       `json:"start_time" bson:"start_time"`
	EndTime           string       `json:"end_time" bson:"end_time"`
	Note              string       `json:"note,omitempty" bson:"note,omitempty"`
	EstimatedCost     int64        `json:"estimated_cost" bson:"estimated_cost"`
	IsManualCost      bool         `json:"is_manual_cost" bson:"is_manual_cost"`
	CostType          CostType     `json:"cost_type" bson:"cost_type"`
	Transit           *TransitInfo `json:"transit_from_previous,omitempty" bson:"transit_from_previous,omitempty"`
	IsManualTransit   bool         `json:"is_manual_transit" bson:"is_manual_transit"`
	Status            StopStatus   `json:"status" bson:"status"`
	ActualArrivalTime *time.Time   `json:"actual_arrival_time,omitempty" bson:"actual_arrival_time,omitempty"`
	ActualCost        int64        `json:"actual_cost,omitempty" bson:"actual_cost,omitempty"`
	CheckInImage      string       `json:"check_in_image,omitempty" bson:"check_in_image,omitempty"`
	Reservation       *Reservation `json:"reservation,omitempty" bson:"reservation,omitempty"`
}

// Done reports whether the stop no longer counts as pending progress.
func (s Stop) Done() bool {
	return s.Status == StopArrived || s.Status == StopSkipped
}

type TransitInfo struct {
	Mode            TransitMode `json:"mode" bson:"mode"`
	DistanceKm      float64     `json:"distance_km" bson:"distance_km"`
	DurationMinutes int         `json:"duration_minutes" bson:"duration_minutes"`
	FromPlaceID     string      `json:"from_place_id,omitempty" bson:"from_place_id,omitempty"`
	Detail          string      `json:"detail,omitempty" bson:"detail,omitempty"`
}

// BudgetBreakdown is the shared vs per-person split of an itinerary's cost.
type BudgetBreakdown struct {
	TotalShared         int64 `json:"total_shared" bson:"total_shared"`
	SharePerPerson      int64 `json:"share_per_person" bson:"share_per_person"`
	TotalPersonal       int64 `json:"total_personal" bson:"total_personal"`
	GrandTotalPerPerson int64 `json:"grand_total_per_person" bson:"grand_total_per_person"`
	IsOverBudget        bool  `json:"is_over_budget" bson:"is_over_budget"`
	OverAmount          int64 `json:"over_amount" bson:"over_amount"`
	Headcount           int   `json:"headcount" bson:"headcount"`
	Degraded            bool  `json:"degraded,omitempty" bson:"degraded,omitempty"`
}
