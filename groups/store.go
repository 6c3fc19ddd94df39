package groups

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"itinera/errs"
	"itinera/models"
)

type Store interface {
	Create(ctx context.Context, g *models.Group) error
	Get(ctx context.Context, groupID string) (*models.Group, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Group, error)
	Save(ctx context.Context, g *models.Group) error
}

// errCodeTaken is returned by Create when the invite code collides.
var errCodeTaken = errs.Conflict("invite code already in use")

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Create(ctx context.Context, g *models.Group) error {
	if _, err := s.coll.InsertOne(ctx, g); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errCodeTaken
		}
		return errors.Wrap(err, "insert group")
	}
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.Group, error) {
	var g models.Group
	err := s.coll.FindOne(ctx, filter).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("group not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "find group")
	}
	return &g, nil
}

func (s *MongoStore) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return s.findOne(ctx, bson.M{"groupid": groupID})
}

func (s *MongoStore) GetByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	return s.findOne(ctx, bson.M{"invite_code": code})
}

func (s *MongoStore) Save(ctx context.Context, g *models.Group) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"groupid": g.GroupID}, g)
	if err != nil {
		return errors.Wrapf(err, "replace group %s", g.GroupID)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("group not found")
	}
	return nil
}

type MemoryStore struct {
	mu     sync.RWMutex
	groups map[string]models.Group
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{groups: make(map[string]models.Group)}
}

func copyGroup(g models.Group) *models.Group {
	g.Members = append([]models.GroupMember(nil), g.Members...)
	return &g
}

func (s *MemoryStore) Create(_ context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.groups {
		if existing.InviteCode == g.InviteCode {
			return errCodeTaken
		}
	}
	s.groups[g.GroupID] = *copyGroup(*g)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, errs.NotFound("group not found")
	}
	return copyGroup(g), nil
}

func (s *MemoryStore) GetByInviteCode(_ context.Context, code string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.InviteCode == code {
			return copyGroup(g), nil
		}
	}
	return nil, errs.NotFound("group not found")
}

func (s *MemoryStore) Save(_ context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.GroupID]; !ok {
		return errs.NotFound("group not found")
	}
	s.groups[g.GroupID] = *copyGroup(*g)
	return nil
}
