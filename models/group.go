package models

import "time"

type GroupRole string

const (
	RoleHost   GroupRole = "HOST"
	RoleMember GroupRole = "MEMBER"
)

type GroupMember struct {
	UserID   string    `json:"user_id" bson:"user_id"`
	Role     GroupRole `json:"role" bson:"role"`
	JoinedAt time.Time `json:"joined_at" bson:"joined_at"`
}

// Group is the companion group travelling an itinerary together.
type Group struct {
	GroupID     string        `json:"groupid" bson:"groupid"`
	Name        string        `json:"name" bson:"name"`
	InviteCode  string        `json:"invite_code" bson:"invite_code"`
	OwnerID     string        `json:"owner_id" bson:"owner_id"`
	ItineraryID string        `json:"itinerary_id" bson:"itinerary_id"`
	Members     []GroupMember `json:"members" bson:"members"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

// MemberIDs lists member user ids in join order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
