//go:build integration

package groups

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinera/db/dbtest"
	"itinera/errs"
	"itinera/models"
)

func TestMongoStoreInviteCodes(t *testing.T) {
	store := NewMongoStore(dbtest.Collections(t).Groups)
	ctx := context.Background()

	g := &models.Group{GroupID: "g1", Name: "Trip crew", InviteCode: "ABCD1234", OwnerID: "alice",
		Members: []models.GroupMember{{UserID: "alice", Role: models.RoleHost}}}
	require.NoError(t, store.Create(ctx, g))

	clash := &models.Group{GroupID: "g2", InviteCode: "ABCD1234", OwnerID: "bob"}
	assert.Equal(t, errs.KindConflict, errs.KindOf(store.Create(ctx, clash)))

	got, err := store.GetByInviteCode(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.GroupID)

	got.Members = append(got.Members, models.GroupMember{UserID: "bob", Role: models.RoleMember})
	require.NoError(t, store.Save(ctx, got))
	again, err := store.Get(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, again.HasMember("bob"))

	_, err = store.Get(ctx, "missing")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}
