package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/task"
	"github.com/fekuna/omnipos-warehouse/internal/task/dto"
	"github.com/fekuna/omnipos-warehouse/internal/testutil"
)

const (
	owner    = "owner-1"
	member   = "member-1"
	outsider = "outsider-1"
)

func as(userID string) context.Context {
	return auth.WithActor(context.Background(), &auth.Actor{UserID: userID})
}

func newUseCase(t *testing.T) (task.UseCase, *testutil.MemTasks) {
	t.Helper()
	boards := testutil.NewMemBoards()
	ctx := context.Background()
	for _, b := range []model.Board{
		{ID: "b1", Name: "One", CreatorID: owner, MemberIDs: []string{owner, member}},
		{ID: "b2", Name: "Two", CreatorID: owner, MemberIDs: []string{owner}},
	} {
		b := b
		require.NoError(t, boards.Create(ctx, &b))
	}
	tasks := testutil.NewMemTasks()
	return NewTaskUseCase(tasks, boards, logger.NewNop()), tasks
}

func TestCreate_TitleUniquePerBoard(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := as(owner)

	first, err := uc.Create(ctx, &dto.CreateTaskInput{BoardID: "b1", Title: " Ship it "})
	require.NoError(t, err)
	assert.Equal(t, "Ship it", first.Title)
	assert.True(t, first.Unassigned)
	assert.Equal(t, owner, first.CreatorID)

	_, err = uc.Create(ctx, &dto.CreateTaskInput{BoardID: "b1", Title: "Ship it"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateTitle)

	_, err = uc.Create(ctx, &dto.CreateTaskInput{BoardID: "b2", Title: "Ship it"})
	assert.NoError(t, err)

	_, err = uc.Create(ctx, &dto.CreateTaskInput{BoardID: "b1", Title: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = uc.Create(ctx, &dto.CreateTaskInput{BoardID: "missing", Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMembershipRequired(t *testing.T) {
	uc, _ := newUseCase(t)
	created, err := uc.Create(as(member), &dto.CreateTaskInput{BoardID: "b1", Title: "Write docs"})
	require.NoError(t, err)

	_, err = uc.Create(as(outsider), &dto.CreateTaskInput{BoardID: "b1", Title: "Sneaky"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = uc.Get(as(outsider), created.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, uc.Delete(as(outsider), created.ID), apperr.ErrForbidden)
	_, err = uc.ListByBoard(context.Background(), "b1")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// Any member may delete, not only the creator
	require.NoError(t, uc.Delete(as(owner), created.ID))
	_, err = uc.Get(as(owner), created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdate_TitleExcludesSelf(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := as(member)
	a, err := uc.Create(ctx, &dto.CreateTaskInput{BoardID: "b1", Title: "A"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, &dto.CreateTaskInput{BoardID: "b1", Title: "B"})
	require.NoError(t, err)

	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	updated, err := uc.Update(ctx, &dto.UpdateTaskInput{ID: a.ID, Title: "A", Description: "same title", DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "same title", updated.Description)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, time.UTC, updated.DueDate.Location())

	_, err = uc.Update(ctx, &dto.UpdateTaskInput{ID: a.ID, Title: "B"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateTitle)
}

func TestAssign(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := as(owner)
	tk, err := uc.Create(ctx, &dto.CreateTaskInput{BoardID: "b1", Title: "Pack", AssignedTo: []string{member}})
	require.NoError(t, err)
	assert.False(t, tk.Unassigned)

	_, err = uc.Assign(ctx, tk.ID, []string{member, outsider})
	assert.ErrorIs(t, err, apperr.ErrNotMember)

	tk, err = uc.Assign(ctx, tk.ID, []string{owner, member, owner})
	require.NoError(t, err)
	assert.Equal(t, []string{owner, member}, tk.AssignedTo)

	tk, err = uc.Assign(ctx, tk.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, tk.AssignedTo)
	assert.True(t, tk.Unassigned)
}

func TestToggleComplete(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := as(member)
	tk, err := uc.Create(ctx, &dto.CreateTaskInput{BoardID: "b1", Title: "Sweep"})
	require.NoError(t, err)

	tk, err = uc.ToggleComplete(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, tk.Completed)
	require.NotNil(t, tk.CompletedAt)

	tk, err = uc.ToggleComplete(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, tk.Completed)
	assert.Nil(t, tk.CompletedAt)

	list, err := uc.ListByBoard(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
