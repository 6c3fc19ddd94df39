package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collections groups the handles the stores work against.
type Collections struct {
	Client         *mongo.Client
	Itineraries    *mongo.Collection
	Availability   *mongo.Collection
	InventoryUnits *mongo.Collection
	Places         *mongo.Collection
	Groups         *mongo.Collection
}

// Connect dials MongoDB, pings it and ensures the indexes the stores rely on.
func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongodb")
	}

	d := client.Database(database)
	c := &Collections{
		Client:         client,
		Itineraries:    d.Collection("itineraries"),
		Availability:   d.Collection("availability"),
		InventoryUnits: d.Collection("inventory_units"),
		Places:         d.Collection("places"),
		Groups:         d.Collection("groups"),
	}

	if err := c.CreateIndexes(ctx); err != nil {
		return nil, err
	}
	logger.Info("connected to mongodb", zap.String("database", database))
	return c, nil
}

// CreateIndexes is idempotent. The availability key index is what makes a
// racing lazy-create of the same record collapse into one document.
func (c *Collections) CreateIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{c.Availability, mongo.IndexModel{
			Keys:    bson.D{{Key: "unit_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time_slot", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{c.InventoryUnits, mongo.IndexModel{Keys: bson.D{{Key: "unitid", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{c.InventoryUnits, mongo.IndexModel{Keys: bson.D{{Key: "place_id", Value: 1}}}},
		{c.Itineraries, mongo.IndexModel{Keys: bson.D{{Key: "itineraryid", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{c.Itineraries, mongo.IndexModel{Keys: bson.D{{Key: "members", Value: 1}, {Key: "status", Value: 1}}}},
		{c.Itineraries, mongo.IndexModel{Keys: bson.D{{Key: "visibility", Value: 1}, {Key: "updated_at", Value: -1}}}},
		{c.Places, mongo.IndexModel{Keys: bson.D{{Key: "placeid", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{c.Groups, mongo.IndexModel{Keys: bson.D{{Key: "invite_code", Value: 1}}, Options: options.Index().SetUnique(true)}},
	}

	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateOne(ctx, ix.model); err != nil {
			return errors.Wrapf(err, "create index on %s", ix.coll.Name())
		}
	}
	return nil
}

// Disconnect closes the client.
func (c *Collections) Disconnect(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}
