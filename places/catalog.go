// Package places is the read-only view of the place catalog used for
// transit and cost estimation.
package places

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v2"

	"itinera/errs"
	"itinera/models"
)

type Catalog interface {
	GetPlace(ctx context.Context, placeID string) (models.Place, error)
	// GetPlaces returns the found places keyed by id; unknown ids are absent.
	GetPlaces(ctx context.Context, placeIDs []string) (map[string]models.Place, error)
}

type MongoCatalog struct {
	coll *mongo.Collection
}

func NewMongoCatalog(coll *mongo.Collection) *MongoCatalog {
	return &MongoCatalog{coll: coll}
}

func (c *MongoCatalog) GetPlace(ctx context.Context, placeID string) (models.Place, error) {
	var p models.Place
	err := c.coll.FindOne(ctx, bson.M{"placeid": placeID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, errs.NotFound("place %s not found", placeID)
	}
	if err != nil {
		return p, errors.Wrapf(err, "find place %s", placeID)
	}
	return p, nil
}

func (c *MongoCatalog) GetPlaces(ctx context.Context, placeIDs []string) (map[string]models.Place, error) {
	out := make(map[string]models.Place, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}
	cursor, err := c.coll.Find(ctx, bson.M{"placeid": bson.M{"$in": placeIDs}})
	if err != nil {
		return nil, errors.Wrap(err, "find places")
	}
	defer cursor.Close(ctx)

	var found []models.Place
	if err := cursor.All(ctx, &found); err != nil {
		return nil, errors.Wrap(err, "decode places")
	}
	for _, p := range found {
		out[p.PlaceID] = p
	}
	return out, nil
}

// MemoryCatalog serves places from a map.
type MemoryCatalog struct {
	mu     sync.RWMutex
	places map[string]models.Place
}

func NewMemoryCatalog(places ...models.Place) *MemoryCatalog {
	c := &MemoryCatalog{places: make(map[string]models.Place)}
	c.Put(places...)
	return c
}

func (c *MemoryCatalog) Put(places ...models.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range places {
		c.places[p.PlaceID] = p
	}
}

func (c *MemoryCatalog) GetPlace(_ context.Context, placeID string) (models.Place, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.places[placeID]
	if !ok {
		return p, errs.NotFound("place %s not found", placeID)
	}
	return p, nil
}

func (c *MemoryCatalog) GetPlaces(_ context.Context, placeIDs []string) (map[string]models.Place, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]models.Place, len(placeIDs))
	for _, id := range placeIDs {
		if p, ok := c.places[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type seedFile struct {
	Places []struct {
		ID        string   `yaml:"id"`
		Name      string   `yaml:"name"`
		Category  string   `yaml:"category"`
		Address   string   `yaml:"address"`
		City      string   `yaml:"city"`
		Latitude  *float64 `yaml:"latitude"`
		Longitude *float64 `yaml:"longitude"`
	} `yaml:"places"`
}

// LoadYAML reads a places seed file for the in-memory catalog.
func LoadYAML(path string) ([]models.Place, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read places file %s", path)
	}
	return parseSeed(raw)
}

func parseSeed(raw []byte) ([]models.Place, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, "parse places file")
	}
	out := make([]models.Place, 0, len(f.Places))
	for _, p := range f.Places {
		if p.ID == "" {
			return nil, errs.Validation("place without id in seed file")
		}
		place := models.Place{PlaceID: p.ID, Name: p.Name, Category: p.Category, Address: p.Address, City: p.City}
		if p.Latitude != nil && p.Longitude != nil {
			place.Location = &models.Coordinates{Latitude: *p.Latitude, Longitude: *p.Longitude}
		}
		out = append(out, place)
	}
	return out, nil
}
