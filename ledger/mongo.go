package ledger

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"itinera/errs"
	"itinera/models"
)

// MongoStore keeps units and availability records in two collections.
// The availability collection needs the unique (unit_id, date, time_slot) index from db.CreateIndexes.
type MongoStore struct {
	units        *mongo.Collection
	availability *mongo.Collection
}

func NewMongoStore(units, availability *mongo.Collection) *MongoStore {
	return &MongoStore{units: units, availability: availability}
}

func key(unitID, date, slot string) bson.M {
	return bson.M{"unit_id": unitID, "date": date, "time_slot": slot}
}

func (s *MongoStore) CreateUnit(ctx context.Context, unit models.InventoryUnit) error {
	if _, err := s.units.InsertOne(ctx, unit); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Conflict("unit %s already exists", unit.UnitID)
		}
		return errors.Wrap(err, "insert inventory unit")
	}
	return nil
}

func (s *MongoStore) GetUnit(ctx context.Context, unitID string) (models.InventoryUnit, error) {
	var unit models.InventoryUnit
	err := s.units.FindOne(ctx, bson.M{"unitid": unitID}).Decode(&unit)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return unit, errs.NotFound("inventory unit %s not found", unitID)
	}
	if err != nil {
		return unit, errors.Wrapf(err, "find inventory unit %s", unitID)
	}
	return unit, nil
}

func (s *MongoStore) UnitsByPlace(ctx context.Context, placeID string) ([]models.InventoryUnit, error) {
	cursor, err := s.units.Find(ctx, bson.M{"place_id": placeID}, options.Find().SetSort(bson.D{{Key: "base_price", Value: 1}}))
	if err != nil {
		return nil, errors.Wrapf(err, "find units for place %s", placeID)
	}
	defer cursor.Close(ctx)

	units := []models.InventoryUnit{}
	if err := cursor.All(ctx, &units); err != nil {
		return nil, errors.Wrap(err, "decode inventory units")
	}
	return units, nil
}

// seed creates the record with full availability if it does not exist yet.
// A racing seed loses on the unique index; the record exists either way.
func (s *MongoStore) seed(ctx context.Context, unit models.InventoryUnit, date, slot string) error {
	_, err := s.availability.UpdateOne(ctx, key(unit.UnitID, date, slot), bson.M{
		"$setOnInsert": bson.M{
			"booked_count":    0,
			"available_count": unit.TotalInventory,
			"total_inventory": unit.TotalInventory,
		},
	}, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(err, "seed availability record")
	}
	return nil
}

func (s *MongoStore) Increment(ctx context.Context, unit models.InventoryUnit, date, slot string) error {
	if err := s.seed(ctx, unit, date, slot); err != nil {
		return err
	}

	filter := key(unit.UnitID, date, slot)
	filter["available_count"] = bson.M{"$gt": 0}
	res, err := s.availability.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"booked_count": 1, "available_count": -1},
	})
	if err != nil {
		return errors.Wrap(err, "reserve availability")
	}
	if res.MatchedCount == 0 {
		return errs.ErrFull
	}
	return nil
}

// Decrement gives back qty bookings in one pipeline update, clamped so
// booked_count stays >= 0 and available_count <= total_inventory.
func (s *MongoStore) Decrement(ctx context.Context, unitID, date, slot string, qty int) error {
	_, err := s.availability.UpdateOne(ctx, key(unitID, date, slot), releasePipeline(qty))
	if err != nil {
		return errors.Wrap(err, "release availability")
	}
	return nil
}

func releasePipeline(qty int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"booked_count":    bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$booked_count", qty}}}},
			"available_count": bson.M{"$min": bson.A{"$total_inventory", bson.M{"$add": bson.A{"$available_count", qty}}}},
		}}},
	}
}

func (s *MongoStore) Records(ctx context.Context, unitID, slot, from, to string) ([]models.AvailabilityRecord, error) {
	filter := bson.M{
		"unit_id":   unitID,
		"time_slot": slot,
		"date":      bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := s.availability.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find availability records")
	}
	defer cursor.Close(ctx)

	var records []models.AvailabilityRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.Wrap(err, "decode availability records")
	}
	return records, nil
}

func (s *MongoStore) SetPriceOverride(ctx context.Context, unit models.InventoryUnit, date, slot string, price int64) error {
	_, err := s.availability.UpdateOne(ctx, key(unit.UnitID, date, slot), bson.M{
		"$set": bson.M{"price_override": price},
		"$setOnInsert": bson.M{
			"booked_count":    0,
			"available_count": unit.TotalInventory,
			"total_inventory": unit.TotalInventory,
		},
	}, options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, "set price override")
	}
	return nil
}
