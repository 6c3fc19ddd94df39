package journey

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"itinera/errs"
	"itinera/models"
)

// Repository persists whole itinerary documents. Writes are last-write-wins.
type Repository interface {
	Create(ctx context.Context, it *models.Itinerary) error
	Get(ctx context.Context, itineraryID string) (*models.Itinerary, error)
	Save(ctx context.Context, it *models.Itinerary) error
	Delete(ctx context.Context, itineraryID string) error
	ListByMember(ctx context.Context, userID string) ([]models.Itinerary, error)
	ListPublic(ctx context.Context, search string, skip, limit int) ([]models.Itinerary, error)
	// PauseOthers moves every other ON_GOING itinerary of ownerID to PAUSED.
	PauseOthers(ctx context.Context, ownerID, exceptID string) (int, error)
}

type MongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{coll: coll}
}

func (r *MongoRepo) Create(ctx context.Context, it *models.Itinerary) error {
	if _, err := r.coll.InsertOne(ctx, it); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Conflict("itinerary %s already exists", it.ItineraryID)
		}
		return errors.Wrap(err, "insert itinerary")
	}
	return nil
}

func (r *MongoRepo) Get(ctx context.Context, itineraryID string) (*models.Itinerary, error) {
	var it models.Itinerary
	err := r.coll.FindOne(ctx, bson.M{"itineraryid": itineraryID}).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("itinerary %s not found", itineraryID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find itinerary %s", itineraryID)
	}
	return &it, nil
}

func (r *MongoRepo) Save(ctx context.Context, it *models.Itinerary) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"itineraryid": it.ItineraryID}, it)
	if err != nil {
		return errors.Wrapf(err, "replace itinerary %s", it.ItineraryID)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("itinerary %s not found", it.ItineraryID)
	}
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, itineraryID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"itineraryid": itineraryID})
	if err != nil {
		return errors.Wrapf(err, "delete itinerary %s", itineraryID)
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("itinerary %s not found", itineraryID)
	}
	return nil
}

func (r *MongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Itinerary, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find itineraries")
	}
	defer cursor.Close(ctx)

	out := []models.Itinerary{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode itineraries")
	}
	return out, nil
}

func (r *MongoRepo) ListByMember(ctx context.Context, userID string) ([]models.Itinerary, error) {
	filter := bson.M{"$or": bson.A{bson.M{"owner_id": userID}, bson.M{"members": userID}}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}}))
}

func (r *MongoRepo) ListPublic(ctx context.Context, search string, skip, limit int) ([]models.Itinerary, error) {
	filter := bson.M{"visibility": models.VisibilityPublic}
	if search = strings.TrimSpace(search); search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *MongoRepo) PauseOthers(ctx context.Context, ownerID, exceptID string) (int, error) {
	filter := bson.M{
		"owner_id":    ownerID,
		"status":      models.StatusOnGoing,
		"itineraryid": bson.M{"$ne": exceptID},
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": models.StatusPaused}})
	if err != nil {
		return 0, errors.Wrap(err, "pause other itineraries")
	}
	return int(res.ModifiedCount), nil
}

// MemoryRepo keeps deep copies so callers never share state with the store.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]models.Itinerary
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]models.Itinerary)}
}

func clone(it models.Itinerary) models.Itinerary {
	out := it
	out.Members = append([]string(nil), it.Members...)
	out.Days = make([]models.Day, len(it.Days))
	for i, d := range it.Days {
		d.Warnings = nil
		d.Stops = append([]models.Stop(nil), d.Stops...)
		for j := range d.Stops {
			s := &d.Stops[j]
			if s.Transit != nil {
				t := *s.Transit
				s.Transit = &t
			}
			if s.Reservation != nil {
				res := *s.Reservation
				res.Dates = append([]string(nil), s.Reservation.Dates...)
				s.Reservation = &res
			}
			if s.ActualArrivalTime != nil {
				at := *s.ActualArrivalTime
				s.ActualArrivalTime = &at
			}
		}
		out.Days[i] = d
	}
	return out
}

func (r *MemoryRepo) Create(_ context.Context, it *models.Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[it.ItineraryID]; ok {
		return errs.Conflict("itinerary %s already exists", it.ItineraryID)
	}
	r.data[it.ItineraryID] = clone(*it)
	return nil
}

func (r *MemoryRepo) Get(_ context.Context, itineraryID string) (*models.Itinerary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.data[itineraryID]
	if !ok {
		return nil, errs.NotFound("itinerary %s not found", itineraryID)
	}
	c := clone(it)
	return &c, nil
}

func (r *MemoryRepo) Save(_ context.Context, it *models.Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[it.ItineraryID]; !ok {
		return errs.NotFound("itinerary %s not found", it.ItineraryID)
	}
	r.data[it.ItineraryID] = clone(*it)
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, itineraryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[itineraryID]; !ok {
		return errs.NotFound("itinerary %s not found", itineraryID)
	}
	delete(r.data, itineraryID)
	return nil
}

func (r *MemoryRepo) ListByMember(_ context.Context, userID string) ([]models.Itinerary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Itinerary{}
	for _, it := range r.data {
		if it.IsMember(userID) {
			out = append(out, clone(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate > out[j].StartDate })
	return out, nil
}

func (r *MemoryRepo) ListPublic(_ context.Context, search string, skip, limit int) ([]models.Itinerary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	search = strings.ToLower(strings.TrimSpace(search))
	out := []models.Itinerary{}
	for _, it := range r.data {
		if it.Visibility != models.VisibilityPublic {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		out = append(out, clone(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if skip >= len(out) {
		return []models.Itinerary{}, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) PauseOthers(_ context.Context, ownerID, exceptID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, it := range r.data {
		if id == exceptID || it.OwnerID != ownerID || it.Status != models.StatusOnGoing {
			continue
		}
		it.Status = models.StatusPaused
		r.data[id] = it
		n++
	}
	return n, nil
}
