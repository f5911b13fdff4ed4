package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/task"
	"github.com/fekuna/omnipos-warehouse/internal/task/dto"
)

type taskUseCase struct {
	repo   task.Repository
	boards task.BoardReader
	logger logger.ZapLogger
	now    func() time.Time
}

func NewTaskUseCase(repo task.Repository, boards task.BoardReader, log logger.ZapLogger) task.UseCase {
	return &taskUseCase{
		repo:   repo,
		boards: boards,
		logger: log,
		now:    time.Now,
	}
}

func (uc *taskUseCase) upstream(err error, msg string) error {
	uc.logger.Error(msg, zap.Error(err))
	return apperr.Upstream(err, "%s", msg)
}

// board loads the board and checks the actor belongs to it.
func (uc *taskUseCase) board(ctx context.Context, boardID string, action auth.Action) (*model.Board, error) {
	actor := auth.ActorFromContext(ctx)
	if actor == nil || actor.UserID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	b, err := uc.boards.FindByID(ctx, boardID)
	if err != nil {
		return nil, uc.upstream(err, "failed to load board")
	}
	if b == nil {
		return nil, apperr.NotFound("board")
	}
	if err := auth.Authorize(actor, auth.TaskResource(b), action); err != nil {
		return nil, err
	}
	return b, nil
}

func (uc *taskUseCase) load(ctx context.Context, taskID string, action auth.Action) (*model.Task, *model.Board, error) {
	if auth.GetUserID(ctx) == "" {
		return nil, nil, apperr.ErrUnauthenticated
	}
	t, err := uc.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, uc.upstream(err, "failed to load task")
	}
	if t == nil {
		return nil, nil, apperr.NotFound("task")
	}
	b, err := uc.board(ctx, t.BoardID, action)
	if err != nil {
		return nil, nil, err
	}
	return t, b, nil
}

func (uc *taskUseCase) checkTitle(ctx context.Context, boardID, title, excludeID string) error {
	exists, err := uc.repo.TitleExists(ctx, boardID, title, excludeID)
	if err != nil {
		return uc.upstream(err, "failed to check task title")
	}
	if exists {
		return apperr.ErrDuplicateTitle
	}
	return nil
}

func checkAssignees(b *model.Board, userIDs []string) error {
	for _, id := range userIDs {
		if id != "" && !b.IsMember(id) {
			return apperr.ErrNotMember.WithMessage("user %s is not a member of this board", id)
		}
	}
	return nil
}

func (uc *taskUseCase) save(ctx context.Context, t *model.Task, create bool) error {
	var err error
	if create {
		err = uc.repo.Create(ctx, t)
	} else {
		err = uc.repo.Update(ctx, t)
	}
	if errors.Is(err, apperr.ErrDuplicateTitle) {
		return err
	}
	if err != nil {
		return uc.upstream(err, "failed to save task")
	}
	return nil
}

func (uc *taskUseCase) Create(ctx context.Context, input *dto.CreateTaskInput) (*model.Task, error) {
	b, err := uc.board(ctx, input.BoardID, auth.ActionCreate)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperr.Validation("task title is required")
	}
	if err := checkAssignees(b, input.AssignedTo); err != nil {
		return nil, err
	}
	if err := uc.checkTitle(ctx, b.ID, title, ""); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	t := &model.Task{
		ID:          uuid.New().String(),
		BoardID:     b.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		DueDate:     utc(input.DueDate),
		CreatorID:   auth.GetUserID(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.SetAssignees(input.AssignedTo)
	if err := uc.save(ctx, t, true); err != nil {
		return nil, err
	}
	return t, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (uc *taskUseCase) Get(ctx context.Context, id string) (*model.Task, error) {
	t, _, err := uc.load(ctx, id, auth.ActionRead)
	return t, err
}

func (uc *taskUseCase) ListByBoard(ctx context.Context, boardID string) ([]model.Task, error) {
	b, err := uc.board(ctx, boardID, auth.ActionRead)
	if err != nil {
		return nil, err
	}
	tasks, err := uc.repo.FindByBoard(ctx, b.ID)
	if err != nil {
		return nil, uc.upstream(err, "failed to list tasks")
	}
	return tasks, nil
}

func (uc *taskUseCase) Update(ctx context.Context, input *dto.UpdateTaskInput) (*model.Task, error) {
	t, _, err := uc.load(ctx, input.ID, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperr.Validation("task title is required")
	}
	if title != t.Title {
		if err := uc.checkTitle(ctx, t.BoardID, title, t.ID); err != nil {
			return nil, err
		}
	}

	t.Title = title
	t.Description = strings.TrimSpace(input.Description)
	t.DueDate = utc(input.DueDate)
	t.UpdatedAt = uc.now().UTC()
	if err := uc.save(ctx, t, false); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *taskUseCase) Assign(ctx context.Context, taskID string, userIDs []string) (*model.Task, error) {
	t, b, err := uc.load(ctx, taskID, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := checkAssignees(b, userIDs); err != nil {
		return nil, err
	}
	t.SetAssignees(userIDs)
	t.UpdatedAt = uc.now().UTC()
	if err := uc.save(ctx, t, false); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *taskUseCase) ToggleComplete(ctx context.Context, taskID string) (*model.Task, error) {
	t, _, err := uc.load(ctx, taskID, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	t.SetCompleted(!t.Completed, now)
	t.UpdatedAt = now
	if err := uc.save(ctx, t, false); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *taskUseCase) Delete(ctx context.Context, taskID string) error {
	t, _, err := uc.load(ctx, taskID, auth.ActionDelete)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, t.ID); err != nil {
		return uc.upstream(err, "failed to delete task")
	}
	return nil
}
