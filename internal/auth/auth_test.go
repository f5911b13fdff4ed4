package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

func TestAuthorize_BoardOwnership(t *testing.T) {
	b := &model.Board{ID: "b1", CreatorID: "owner", MemberIDs: []string{"owner", "member"}}
	owner := &Actor{UserID: "owner"}
	member := &Actor{UserID: "member"}
	stranger := &Actor{UserID: "stranger"}

	for _, action := range []Action{ActionUpdate, ActionDelete, ActionManageMembers} {
		assert.NoError(t, Authorize(owner, BoardResource(b), action))
		assert.ErrorIs(t, Authorize(member, BoardResource(b), action), apperr.ErrForbidden)
		assert.ErrorIs(t, Authorize(stranger, BoardResource(b), action), apperr.ErrForbidden)
	}

	assert.NoError(t, Authorize(member, BoardResource(b), ActionRead))
	assert.ErrorIs(t, Authorize(stranger, BoardResource(b), ActionRead), apperr.ErrForbidden)
	assert.NoError(t, Authorize(stranger, BoardResource(nil), ActionCreate))
}

func TestAuthorize_TasksNeedMembership(t *testing.T) {
	b := &model.Board{ID: "b1", CreatorID: "owner", MemberIDs: []string{"owner", "member"}}

	assert.NoError(t, Authorize(&Actor{UserID: "member"}, TaskResource(b), ActionCreate))
	assert.NoError(t, Authorize(&Actor{UserID: "owner"}, TaskResource(b), ActionDelete))
	assert.ErrorIs(t, Authorize(&Actor{UserID: "x"}, TaskResource(b), ActionRead), apperr.ErrForbidden)
}

func TestAuthorize_Roles(t *testing.T) {
	viewer := &Actor{UserID: "v", Role: model.RoleViewer}
	staff := &Actor{UserID: "s", Role: model.RoleStaff}
	admin := &Actor{UserID: "a", Role: model.RoleAdmin}

	assert.NoError(t, Authorize(viewer, Catalog(KindInventory), ActionRead))
	assert.ErrorIs(t, Authorize(viewer, Catalog(KindInventory), ActionStockIn), apperr.ErrForbidden)
	assert.NoError(t, Authorize(staff, Catalog(KindInventory), ActionStockOut))
	assert.ErrorIs(t, Authorize(staff, Catalog(KindInventory), ActionAdjust), apperr.ErrForbidden)
	assert.NoError(t, Authorize(admin, Catalog(KindInventory), ActionAdjust))

	assert.NoError(t, Authorize(staff, Catalog(KindProduct), ActionUpdate))
	assert.ErrorIs(t, Authorize(staff, Catalog(KindProduct), ActionDelete), apperr.ErrForbidden)
	assert.ErrorIs(t, Authorize(staff, Catalog(KindAttribute), ActionCreate), apperr.ErrForbidden)
	assert.ErrorIs(t, Authorize(staff, Catalog(KindImport), ActionCreate), apperr.ErrForbidden)
	assert.NoError(t, Authorize(admin, Catalog(KindUser), ActionRead))
}

func TestAuthorize_BoardIdentityCannotReadWarehouse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, "warehouse")
	tok, err := m.IssueIdentity("firebase-uid", "carol@example.com", "Carol")
	require.NoError(t, err)
	claims, err := m.Parse(tok)
	require.NoError(t, err)
	actor := claims.Actor()
	require.Empty(t, actor.Role)

	for _, kind := range []ResourceKind{KindProduct, KindInventory, KindAttribute, KindImport, KindUser} {
		assert.ErrorIs(t, Authorize(actor, Catalog(kind), ActionRead), apperr.ErrForbidden, "kind %d", kind)
	}
	assert.ErrorIs(t, Authorize(&Actor{UserID: "x", Role: "owner"}, Catalog(KindProduct), ActionRead), apperr.ErrForbidden)
	assert.NoError(t, Authorize(&Actor{UserID: "v", Role: model.RoleViewer}, Catalog(KindAttribute), ActionRead))
}

func TestAuthorize_Anonymous(t *testing.T) {
	assert.ErrorIs(t, Authorize(nil, Catalog(KindProduct), ActionRead), apperr.ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(&Actor{}, Catalog(KindProduct), ActionRead), apperr.ErrUnauthenticated)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, "warehouse")

	tok, exp, err := m.Issue(&model.User{ID: "u1", Username: "alice", Email: "a@x.io", Role: model.RoleStaff})
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	actor := claims.Actor()
	assert.Equal(t, "u1", actor.UserID)
	assert.Equal(t, model.RoleStaff, actor.Role)
	assert.Equal(t, "alice", actor.Name)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, "warehouse")
	other := NewTokenManager("other", time.Hour, "warehouse")

	tok, err := other.IssueIdentity("u1", "a@x.io", "Alice")
	require.NoError(t, err)
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	expired := NewTokenManager("secret", time.Minute, "warehouse")
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err = expired.IssueIdentity("u1", "a@x.io", "Alice")
	require.NoError(t, err)
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = m.Parse("garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestActorContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ActorFromContext(ctx))
	assert.Equal(t, "", GetUserID(ctx))

	ctx = WithActor(ctx, &Actor{UserID: "u1"})
	assert.Equal(t, "u1", GetUserID(ctx))
}
