// Package journey orchestrates itinerary use cases: it loads the document,
// applies one mutation, re-derives schedule and budget, takes or returns
// inventory, persists, and notifies the other members.
package journey

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"itinera/budget"
	"itinera/errs"
	"itinera/logging"
	"itinera/models"
	"itinera/places"
	"itinera/scheduler"
	"itinera/utils"
)

// Inventory is the part of the ledger the orchestrator reserves through.
type Inventory interface {
	GetUnit(ctx context.Context, unitID string) (models.InventoryUnit, error)
	ReserveStay(ctx context.Context, unitID, checkIn string, nights int, slot string) (*models.Reservation, error)
	ReleaseReservation(ctx context.Context, res *models.Reservation) error
	HasCapacity(ctx context.Context, placeID, date string) (bool, error)
}

type Notifier interface {
	Send(ctx context.Context, recipients []string, title, message string, metadata map[string]string) error
}

type GroupCreator interface {
	CreateCompanionGroup(ctx context.Context, itineraryID, name, ownerID string) (string, error)
}

const notifyTimeout = 5 * time.Second

type Service struct {
	repo      Repository
	catalog   places.Catalog
	inventory Inventory
	budget    *budget.Service
	notifier  Notifier
	groups    GroupCreator
	logger    *zap.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

// NewService wires the orchestrator. notifier and groups may be nil.
func NewService(repo Repository, catalog places.Catalog, inventory Inventory, budgets *budget.Service,
	notifier Notifier, groups GroupCreator, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		inventory: inventory,
		budget:    budgets,
		notifier:  notifier,
		groups:    groups,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// SetGroups wires the companion group store after construction, since the
// group store itself refreshes budgets through the service.
func (s *Service) SetGroups(g GroupCreator) { s.groups = g }

// Wait blocks until in-flight notifications are done.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// change describes one mutation beyond the document edit itself.
type change struct {
	opts []scheduler.Option
	// reserve runs after scheduling succeeds. undo compensates it when the
	// save fails.
	reserve func(ctx context.Context, it *models.Itinerary, warn func(day int, msg string)) (undo func(context.Context), err error)
	// release is handed back to the ledger after the save.
	release []models.Reservation
	after   func(ctx context.Context, it *models.Itinerary)

	title     string
	message   string
	dayNumber int
}

func (s *Service) load(ctx context.Context, itineraryID string) (*models.Itinerary, error) {
	if itineraryID == "" {
		return nil, errs.Validation("itinerary id is required")
	}
	return s.repo.Get(ctx, itineraryID)
}

// loadForEdit loads an itinerary the user may edit and that still accepts edits.
func (s *Service) loadForEdit(ctx context.Context, userID, itineraryID string) (*models.Itinerary, error) {
	it, err := s.load(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if !it.IsMember(userID) {
		return nil, errs.Forbidden("you are not a member of this itinerary")
	}
	if it.Status.Terminal() {
		return nil, errs.Validation("itinerary is %s", it.Status)
	}
	return it, nil
}

func (s *Service) placesFor(ctx context.Context, it *models.Itinerary) (map[string]models.Place, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range it.Days {
		for _, st := range d.Stops {
			if !seen[st.PlaceID] {
				seen[st.PlaceID] = true
				ids = append(ids, st.PlaceID)
			}
		}
	}
	return s.catalog.GetPlaces(ctx, ids)
}

// commit runs the shared tail of every stop or lifecycle mutation.
func (s *Service) commit(ctx context.Context, actor string, it *models.Itinerary, ch change) (*Result, error) {
	pl, err := s.placesFor(ctx, it)
	if err != nil {
		return nil, err
	}
	sched, err := scheduler.Recalculate(it, pl, ch.opts...)
	if err != nil {
		return nil, err
	}
	warnings := sched.Warnings

	var undo func(context.Context)
	if ch.reserve != nil {
		warn := func(day int, msg string) {
			warnings = append(warnings, scheduler.Warning{DayNumber: day, Message: msg})
		}
		if undo, err = ch.reserve(ctx, it, warn); err != nil {
			return nil, err
		}
	}

	s.budget.Sync(ctx, it, pl)
	it.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, it); err != nil {
		if undo != nil {
			undo(ctx)
		}
		s.logger.Error("save itinerary failed", zap.String("itinerary_id", it.ItineraryID), zap.Error(err))
		return nil, errs.Internal(err, "could not save itinerary")
	}

	for i := range ch.release {
		s.inventory.ReleaseReservation(ctx, &ch.release[i])
	}
	if ch.after != nil {
		ch.after(ctx, it)
	}
	if ch.title != "" {
		s.notifyMembers(it, actor, ch.title, ch.message, ch.dayNumber)
	}
	if warnings == nil {
		warnings = []scheduler.Warning{}
	}
	return &Result{Itinerary: it, Warnings: warnings}, nil
}

// notifyMembers tells every member except actor, off the request path.
func (s *Service) notifyMembers(it *models.Itinerary, actor, title, message string, dayNumber int) {
	if s.notifier == nil {
		return
	}
	recipients := utils.Without(it.Members, actor)
	if len(recipients) == 0 {
		return
	}
	meta := map[string]string{"itinerary_id": it.ItineraryID}
	if dayNumber > 0 {
		meta["day_number"] = strconv.Itoa(dayNumber)
	}

	id := it.ItineraryID
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Send(ctx, recipients, title, message, meta); err != nil {
			s.logger.Warn("notification failed",
				zap.String("itinerary_id", id), zap.String("title", title), zap.Error(err))
		}
	}()
}
