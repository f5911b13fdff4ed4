package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/board"
	"github.com/fekuna/omnipos-warehouse/internal/board/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/testutil"
)

const (
	owner = "owner-1"
	alice = "alice-1"
	bob   = "bob-1"
)

type fixture struct {
	uc     board.UseCase
	boards *testutil.MemBoards
	tasks  *testutil.MemTasks
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	members := testutil.NewMemMembers(
		model.Member{ID: owner, Email: "owner@example.com", DisplayName: "Owner"},
		model.Member{ID: alice, Email: "Alice@Example.com", DisplayName: "Alice"},
		model.Member{ID: bob, Email: "bob@example.com", DisplayName: "Bob"},
	)
	f := &fixture{boards: testutil.NewMemBoards(), tasks: testutil.NewMemTasks()}
	f.uc = NewBoardUseCase(f.boards, members, f.tasks, testutil.NoTx{}, logger.NewNop())
	return f
}

func as(userID string) context.Context {
	return auth.WithActor(context.Background(), &auth.Actor{UserID: userID, Email: userID + "@example.com"})
}

func (f *fixture) boardWith(t *testing.T, memberIDs ...string) *model.Board {
	t.Helper()
	b, err := f.uc.CreateBoard(as(owner), &dto.BoardInput{Name: "Launch"})
	require.NoError(t, err)
	for _, id := range memberIDs {
		require.NoError(t, f.boards.AddMember(context.Background(), b.ID, id))
	}
	return b
}

func (f *fixture) task(t *testing.T, boardID, title string, assigned ...string) string {
	t.Helper()
	task := &model.Task{ID: title + "-id", BoardID: boardID, Title: title, CreatedAt: time.Now()}
	task.SetAssignees(assigned)
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task.ID
}

func TestCreateBoard(t *testing.T) {
	f := newFixture(t)

	b, err := f.uc.CreateBoard(as(owner), &dto.BoardInput{Name: "  Launch ", Description: "Q3"})
	require.NoError(t, err)
	assert.Equal(t, "Launch", b.Name)
	assert.Equal(t, owner, b.CreatorID)
	assert.Equal(t, []string{owner}, b.MemberIDs)

	_, err = f.uc.CreateBoard(as(owner), &dto.BoardInput{Name: " "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.uc.CreateBoard(context.Background(), &dto.BoardInput{Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	boards, err := f.uc.ListBoards(as(owner))
	require.NoError(t, err)
	assert.Len(t, boards, 1)
	boards, err = f.uc.ListBoards(as(alice))
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestOnlyOwnerMutates(t *testing.T) {
	f := newFixture(t)
	b := f.boardWith(t, alice)
	ctx := as(alice)

	_, err := f.uc.UpdateBoard(ctx, b.ID, &dto.BoardInput{Name: "Renamed"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, f.uc.DeleteBoard(ctx, b.ID), apperr.ErrForbidden)
	_, err = f.uc.AddMember(ctx, b.ID, "bob@example.com")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, f.uc.RemoveMember(ctx, b.ID, alice), apperr.ErrForbidden)

	// Members can still read
	detail, err := f.uc.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, detail.IsOwner)
	assert.Len(t, detail.Members, 2)

	_, err = f.uc.GetBoard(as(bob), b.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.uc.GetBoard(as(owner), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := f.uc.UpdateBoard(as(owner), b.ID, &dto.BoardInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestAddMember_ErrorOrder(t *testing.T) {
	f := newFixture(t)
	b := f.boardWith(t)
	ctx := as(owner)

	_, err := f.uc.AddMember(ctx, b.ID, "ghost@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.uc.AddMember(ctx, b.ID, "owner@example.com")
	assert.ErrorIs(t, err, apperr.ErrSelfReference)

	m, err := f.uc.AddMember(ctx, b.ID, " alice@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, alice, m.ID)

	_, err = f.uc.AddMember(ctx, b.ID, "alice@example.com")
	assert.ErrorIs(t, err, apperr.ErrAlreadyMember)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	got, err := f.boards.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner, alice}, got.MemberIDs)
}

func TestRemoveMember_UnassignsTasks(t *testing.T) {
	f := newFixture(t)
	b := f.boardWith(t, alice, bob)
	shared := f.task(t, b.ID, "shared", alice, bob)
	solo := f.task(t, b.ID, "solo", alice)
	other := f.task(t, b.ID, "other", bob)

	require.NoError(t, f.uc.RemoveMember(as(owner), b.ID, alice))

	ctx := context.Background()
	got, _ := f.tasks.FindByID(ctx, shared)
	assert.Equal(t, []string{bob}, got.AssignedTo)
	assert.False(t, got.Unassigned)

	got, _ = f.tasks.FindByID(ctx, solo)
	assert.Empty(t, got.AssignedTo)
	assert.True(t, got.Unassigned)

	got, _ = f.tasks.FindByID(ctx, other)
	assert.Equal(t, []string{bob}, got.AssignedTo)

	bd, _ := f.boards.FindByID(ctx, b.ID)
	assert.Equal(t, []string{owner, bob}, bd.MemberIDs)

	assert.ErrorIs(t, f.uc.RemoveMember(as(owner), b.ID, alice), apperr.ErrNotMember)
	assert.ErrorIs(t, f.uc.RemoveMember(as(owner), b.ID, owner), apperr.ErrSelfReference)
}

func TestRemoveMember_KeepsRosterWhenTasksFail(t *testing.T) {
	f := newFixture(t)
	b := f.boardWith(t, alice)
	f.tasks.UnassignErr = errors.New("connection reset")

	err := f.uc.RemoveMember(as(owner), b.ID, alice)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	bd, _ := f.boards.FindByID(context.Background(), b.ID)
	assert.Contains(t, bd.MemberIDs, alice)
}

func TestDeleteBoard_MustBeEmpty(t *testing.T) {
	f := newFixture(t)
	b := f.boardWith(t, alice)
	taskID := f.task(t, b.ID, "todo")
	ctx := as(owner)

	assert.ErrorIs(t, f.uc.DeleteBoard(ctx, b.ID), apperr.ErrNotEmpty)

	require.NoError(t, f.tasks.Delete(context.Background(), taskID))
	assert.ErrorIs(t, f.uc.DeleteBoard(ctx, b.ID), apperr.ErrNotEmpty)

	require.NoError(t, f.uc.RemoveMember(ctx, b.ID, alice))
	require.NoError(t, f.uc.DeleteBoard(ctx, b.ID))

	_, err := f.uc.GetBoard(ctx, b.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSaveProfile(t *testing.T) {
	f := newFixture(t)
	ctx := auth.WithActor(context.Background(), &auth.Actor{UserID: "new-1", Email: "New.User@Example.com"})

	m, err := f.uc.SaveProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", m.Email)
	assert.Equal(t, "New.User", m.DisplayName)
	assert.False(t, m.LastLogin.IsZero())

	// The saved profile can now be invited by email
	b := f.boardWith(t)
	added, err := f.uc.AddMember(as(owner), b.ID, "new.user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new-1", added.ID)
}
