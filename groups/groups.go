// Package groups keeps the companion group of each itinerary. Membership
// changes are pushed back to the itinerary budget through BudgetRefresher.
package groups

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"itinera/errs"
	"itinera/logging"
	"itinera/models"
	"itinera/utils"
)

// BudgetRefresher recomputes an itinerary's budget for a new member list.
type BudgetRefresher interface {
	RefreshBudget(ctx context.Context, itineraryID string, members []string) error
}

const (
	inviteCodeLength = 8
	inviteAttempts   = 5
)

type Service struct {
	store     Store
	refresher BudgetRefresher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, refresher BudgetRefresher, logger *zap.Logger) *Service {
	return &Service{store: store, refresher: refresher, logger: logging.OrNop(logger), now: time.Now}
}

// CreateCompanionGroup opens a group for an itinerary with the owner as host.
func (s *Service) CreateCompanionGroup(ctx context.Context, itineraryID, name, ownerID string) (string, error) {
	now := s.now().UTC()
	g := &models.Group{
		GroupID:     utils.GetUUID(),
		Name:        name,
		OwnerID:     ownerID,
		ItineraryID: itineraryID,
		Members:     []models.GroupMember{{UserID: ownerID, Role: models.RoleHost, JoinedAt: now}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := 0; i < inviteAttempts; i++ {
		g.InviteCode = strings.ToUpper(utils.GenerateRandomString(inviteCodeLength))
		err := s.store.Create(ctx, g)
		if err == nil {
			s.logger.Info("companion group created", zap.String("group_id", g.GroupID), zap.String("itinerary_id", itineraryID))
			return g.GroupID, nil
		}
		if !errors.Is(err, errCodeTaken) {
			return "", err
		}
	}
	return "", errs.Conflict("could not allocate an invite code")
}

func (s *Service) Get(ctx context.Context, userID, groupID string) (*models.Group, error) {
	g, err := s.store.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(userID) {
		return nil, errs.Forbidden("you are not in this group")
	}
	return g, nil
}

// Join adds userID to the group behind code. Joining twice is a no-op.
func (s *Service) Join(ctx context.Context, userID, code string) (*models.Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errs.Validation("invite_code is required")
	}
	g, err := s.store.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if g.HasMember(userID) {
		return g, nil
	}
	g.Members = append(g.Members, models.GroupMember{UserID: userID, Role: models.RoleMember, JoinedAt: s.now().UTC()})
	if err := s.save(ctx, g); err != nil {
		return nil, err
	}
	s.refresh(ctx, g)
	return g, nil
}

// Leave removes userID. The host cannot leave their own group.
func (s *Service) Leave(ctx context.Context, userID, groupID string) (*models.Group, error) {
	g, err := s.store.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(userID) {
		return nil, errs.NotFound("you are not in this group")
	}
	if g.OwnerID == userID {
		return nil, errs.Validation("the host cannot leave the group")
	}
	kept := g.Members[:0]
	for _, m := range g.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	g.Members = kept
	if err := s.save(ctx, g); err != nil {
		return nil, err
	}
	s.refresh(ctx, g)
	return g, nil
}

func (s *Service) save(ctx context.Context, g *models.Group) error {
	g.UpdatedAt = s.now().UTC()
	return s.store.Save(ctx, g)
}

// refresh is best effort: the membership change already stands.
func (s *Service) refresh(ctx context.Context, g *models.Group) {
	if s.refresher == nil || g.ItineraryID == "" {
		return
	}
	if err := s.refresher.RefreshBudget(ctx, g.ItineraryID, g.MemberIDs()); err != nil {
		s.logger.Warn("budget refresh failed",
			zap.String("group_id", g.GroupID), zap.String("itinerary_id", g.ItineraryID), zap.Error(err))
	}
}
