package journey

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"itinera/budget"
	"itinera/errs"
	"itinera/models"
	"itinera/scheduler"
	"itinera/utils"
)

func validVisibility(v models.Visibility) bool {
	return v == models.VisibilityPrivate || v == models.VisibilityPublic
}

// CreateItinerary builds one empty day per calendar date with the caller as owner.
func (s *Service) CreateItinerary(ctx context.Context, userID string, req CreateRequest) (*Result, error) {
	if userID == "" {
		return nil, errs.Forbidden("login required")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, errs.Validation("name is required")
	}
	if req.BudgetLimit < 0 {
		return nil, errs.Validation("budget_limit must not be negative")
	}
	if req.Visibility == "" {
		req.Visibility = models.VisibilityPrivate
	}
	if !validVisibility(req.Visibility) {
		return nil, errs.Validation("unknown visibility %q", req.Visibility)
	}
	dates, err := utils.DateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	members := []string{userID}
	for _, m := range req.Members {
		m = strings.TrimSpace(m)
		if m != "" && !utils.Contains(members, m) {
			members = append(members, m)
		}
	}
	planned := req.PlannedMembersCount
	if planned < 1 {
		planned = 1
	}

	now := s.now().UTC()
	it := &models.Itinerary{
		ItineraryID:         utils.GetUUID(),
		OwnerID:             userID,
		Name:                req.Name,
		Description:         strings.TrimSpace(req.Description),
		Members:             members,
		PlannedMembersCount: planned,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		BudgetLimit:         req.BudgetLimit,
		Visibility:          req.Visibility,
		Status:              models.StatusPlanning,
		Days:                make([]models.Day, 0, len(dates)),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	for i, d := range dates {
		it.Days = append(it.Days, models.Day{DayID: utils.GetUUID(), DayNumber: i + 1, Date: d, Stops: []models.Stop{}})
	}
	s.budget.Sync(ctx, it, nil)

	if s.groups != nil {
		groupID, err := s.groups.CreateCompanionGroup(ctx, it.ItineraryID, it.Name, userID)
		if err != nil {
			s.logger.Warn("companion group not created", zap.String("itinerary_id", it.ItineraryID), zap.Error(err))
		} else {
			it.GroupID = groupID
		}
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	s.logger.Info("itinerary created",
		zap.String("itinerary_id", it.ItineraryID), zap.String("owner_id", userID), zap.Int("days", len(it.Days)))
	s.notifyMembers(it, userID, "New trip", "You were added to "+it.Name, 0)
	return &Result{Itinerary: it, Warnings: []scheduler.Warning{}}, nil
}

// GetItinerary returns a PUBLIC itinerary or one the user belongs to, with
// freshly derived warnings.
func (s *Service) GetItinerary(ctx context.Context, userID, itineraryID string) (*Result, error) {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if it.Visibility != models.VisibilityPublic && !it.IsMember(userID) {
		return nil, errs.Forbidden("itinerary is private")
	}

	res := &Result{Itinerary: it, Warnings: []scheduler.Warning{}}
	pl, err := s.placesFor(ctx, it)
	if err != nil {
		s.logger.Warn("places lookup failed", zap.String("itinerary_id", itineraryID), zap.Error(err))
		return res, nil
	}
	if sched, err := scheduler.Recalculate(it, pl); err == nil && sched.Warnings != nil {
		res.Warnings = sched.Warnings
	}
	return res, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]models.Itinerary, error) {
	if userID == "" {
		return nil, errs.Forbidden("login required")
	}
	return s.repo.ListByMember(ctx, userID)
}

func (s *Service) ListPublic(ctx context.Context, search string, page, limit int) ([]models.Itinerary, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListPublic(ctx, search, (page-1)*limit, limit)
}

// UpdateItinerary edits trip-level fields. Moving the end date appends empty
// days or drops trailing ones, which must have no stops.
func (s *Service) UpdateItinerary(ctx context.Context, userID, itineraryID string, req UpdateRequest) (*Result, error) {
	it, err := s.loadForEdit(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errs.Validation("name must not be empty")
		}
		it.Name = name
	}
	if req.Description != nil {
		it.Description = strings.TrimSpace(*req.Description)
	}
	if req.BudgetLimit != nil {
		if *req.BudgetLimit < 0 {
			return nil, errs.Validation("budget_limit must not be negative")
		}
		it.BudgetLimit = *req.BudgetLimit
	}
	if req.Visibility != nil {
		if !validVisibility(*req.Visibility) {
			return nil, errs.Validation("unknown visibility %q", *req.Visibility)
		}
		it.Visibility = *req.Visibility
	}
	if req.PlannedMembersCount != nil {
		if *req.PlannedMembersCount < 1 {
			return nil, errs.Validation("planned_members_count must be at least 1")
		}
		it.PlannedMembersCount = *req.PlannedMembersCount
	}
	if req.EndDate != nil {
		if err := resize(it, *req.EndDate); err != nil {
			return nil, err
		}
	}

	return s.commit(ctx, userID, it, change{title: "Trip updated", message: it.Name + " was updated"})
}

func resize(it *models.Itinerary, end string) error {
	if _, err := utils.DateRange(it.StartDate, end); err != nil {
		return err
	}
	gap, err := utils.DaysBetween(it.EndDate, end)
	if err != nil {
		return err
	}

	switch {
	case gap > 0:
		last := it.StartDate
		if n := len(it.Days); n > 0 {
			last = it.Days[n-1].Date
		}
		for i := 1; i <= gap; i++ {
			d, err := utils.AddDays(last, i)
			if err != nil {
				return err
			}
			it.Days = append(it.Days, models.Day{DayID: utils.GetUUID(), DayNumber: len(it.Days) + 1, Date: d, Stops: []models.Stop{}})
		}
	case gap < 0:
		keep := len(it.Days) + gap
		if keep < 1 {
			return errs.Validation("end date %s removes every day", end)
		}
		for _, d := range it.Days[keep:] {
			if len(d.Stops) > 0 {
				return errs.Validation("day %d still has stops", d.DayNumber)
			}
		}
		it.Days = it.Days[:keep]
	}
	it.EndDate = end
	return nil
}

// DeleteItinerary removes the trip and hands back the inventory it holds.
func (s *Service) DeleteItinerary(ctx context.Context, userID, itineraryID string) error {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return err
	}
	if it.OwnerID != userID {
		return errs.Forbidden("only the owner can delete the itinerary")
	}
	if err := s.repo.Delete(ctx, itineraryID); err != nil {
		return err
	}
	for _, d := range it.Days {
		for _, st := range d.Stops {
			if st.Reservation != nil && st.Status == models.StopPending {
				s.inventory.ReleaseReservation(ctx, st.Reservation)
			}
		}
	}
	s.logger.Info("itinerary deleted", zap.String("itinerary_id", itineraryID))
	s.notifyMembers(it, userID, "Trip deleted", it.Name+" was deleted", 0)
	return nil
}

// GetBudget itemises the trip without persisting. headcount <= 0 uses the
// itinerary's own headcount.
func (s *Service) GetBudget(ctx context.Context, userID, itineraryID string, headcount int, includeAccommodation bool) (budget.Report, error) {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return budget.Report{}, err
	}
	if it.Visibility != models.VisibilityPublic && !it.IsMember(userID) {
		return budget.Report{}, errs.Forbidden("itinerary is private")
	}
	pl, err := s.placesFor(ctx, it)
	if err != nil {
		return budget.Report{}, err
	}
	return s.budget.Compute(ctx, it, pl, budget.Options{Headcount: headcount, IncludeAccommodation: includeAccommodation}), nil
}

// RefreshBudget replaces the member list and recomputes the persisted budget.
// The owner always stays first.
func (s *Service) RefreshBudget(ctx context.Context, itineraryID string, members []string) error {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return err
	}
	next := []string{it.OwnerID}
	for _, m := range members {
		if m != "" && !utils.Contains(next, m) {
			next = append(next, m)
		}
	}
	it.Members = next

	pl, err := s.placesFor(ctx, it)
	if err != nil {
		return err
	}
	s.budget.Sync(ctx, it, pl)
	it.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, it); err != nil {
		return errs.Internal(err, "could not save itinerary")
	}
	s.logger.Info("budget refreshed", zap.String("itinerary_id", itineraryID), zap.Int("members", len(next)))
	return nil
}
