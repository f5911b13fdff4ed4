package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/board"
	"github.com/fekuna/omnipos-warehouse/internal/board/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
)

type boardUseCase struct {
	repo    board.Repository
	members board.MemberRepository
	tasks   board.TaskStore
	tx      board.Transactor
	logger  logger.ZapLogger
	now     func() time.Time
}

func NewBoardUseCase(repo board.Repository, members board.MemberRepository, tasks board.TaskStore, tx board.Transactor, log logger.ZapLogger) board.UseCase {
	return &boardUseCase{
		repo:    repo,
		members: members,
		tasks:   tasks,
		tx:      tx,
		logger:  log,
		now:     time.Now,
	}
}

// load fetches the board and checks the actor may perform action on it.
func (uc *boardUseCase) load(ctx context.Context, id string, action auth.Action) (*model.Board, *auth.Actor, error) {
	actor := auth.ActorFromContext(ctx)
	if actor == nil || actor.UserID == "" {
		return nil, nil, apperr.ErrUnauthenticated
	}
	b, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, uc.upstream(err, "failed to load board")
	}
	if b == nil {
		return nil, nil, apperr.NotFound("board")
	}
	if err := auth.Authorize(actor, auth.BoardResource(b), action); err != nil {
		return nil, nil, err
	}
	return b, actor, nil
}

func (uc *boardUseCase) upstream(err error, msg string) error {
	uc.logger.Error(msg, zap.Error(err))
	return apperr.Upstream(err, "%s", msg)
}

func (uc *boardUseCase) CreateBoard(ctx context.Context, input *dto.BoardInput) (*model.Board, error) {
	actor := auth.ActorFromContext(ctx)
	if err := auth.Authorize(actor, auth.BoardResource(nil), auth.ActionCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("board name is required")
	}

	now := uc.now().UTC()
	b := &model.Board{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatorID:   actor.UserID,
		MemberIDs:   []string{actor.UserID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, uc.upstream(err, "failed to create board")
	}
	return b, nil
}

func (uc *boardUseCase) GetBoard(ctx context.Context, id string) (*dto.BoardDetail, error) {
	b, actor, err := uc.load(ctx, id, auth.ActionRead)
	if err != nil {
		return nil, err
	}
	tasks, err := uc.tasks.FindByBoard(ctx, b.ID)
	if err != nil {
		return nil, uc.upstream(err, "failed to load tasks")
	}
	ids := []string{b.CreatorID}
	for _, id := range b.MemberIDs {
		if id != b.CreatorID {
			ids = append(ids, id)
		}
	}
	members, err := uc.members.FindByIDs(ctx, ids)
	if err != nil {
		return nil, uc.upstream(err, "failed to load members")
	}
	return &dto.BoardDetail{
		Board:   b,
		Tasks:   tasks,
		Members: members,
		IsOwner: b.IsOwner(actor.UserID),
	}, nil
}

func (uc *boardUseCase) ListBoards(ctx context.Context) ([]model.Board, error) {
	userID := auth.GetUserID(ctx)
	if userID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	boards, err := uc.repo.FindByMember(ctx, userID)
	if err != nil {
		return nil, uc.upstream(err, "failed to list boards")
	}
	return boards, nil
}

func (uc *boardUseCase) UpdateBoard(ctx context.Context, id string, input *dto.BoardInput) (*model.Board, error) {
	b, _, err := uc.load(ctx, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("board name is required")
	}
	b.Name = name
	b.Description = strings.TrimSpace(input.Description)
	b.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, b); err != nil {
		return nil, uc.upstream(err, "failed to update board")
	}
	return b, nil
}

func (uc *boardUseCase) DeleteBoard(ctx context.Context, id string) error {
	b, _, err := uc.load(ctx, id, auth.ActionDelete)
	if err != nil {
		return err
	}
	n, err := uc.tasks.CountByBoard(ctx, b.ID)
	if err != nil {
		return uc.upstream(err, "failed to count tasks")
	}
	if n > 0 {
		return apperr.ErrNotEmpty.WithMessage("board still has %d task(s)", n)
	}
	if b.MemberCount() > 1 {
		return apperr.ErrNotEmpty.WithMessage("board still has other members")
	}
	if err := uc.repo.Delete(ctx, b.ID); err != nil {
		return uc.upstream(err, "failed to delete board")
	}
	return nil
}

func (uc *boardUseCase) AddMember(ctx context.Context, boardID, email string) (*model.Member, error) {
	b, _, err := uc.load(ctx, boardID, auth.ActionManageMembers)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}

	m, err := uc.members.FindByEmail(ctx, email)
	if err != nil {
		return nil, uc.upstream(err, "failed to look up user")
	}
	if m == nil {
		return nil, apperr.ErrNotFound.WithMessage("no user with email %s", email)
	}
	if b.IsOwner(m.ID) {
		return nil, apperr.ErrSelfReference.WithMessage("the board owner is already a member")
	}
	if b.IsMember(m.ID) {
		return nil, apperr.ErrAlreadyMember
	}

	if err := uc.repo.AddMember(ctx, b.ID, m.ID); err != nil {
		return nil, uc.upstream(err, "failed to add member")
	}
	uc.logger.Info("board member added", zap.String("board_id", b.ID), zap.String("user_id", m.ID))
	return m, nil
}

// RemoveMember unassigns the user from the board's tasks, then drops them from the roster.
func (uc *boardUseCase) RemoveMember(ctx context.Context, boardID, userID string) error {
	b, _, err := uc.load(ctx, boardID, auth.ActionManageMembers)
	if err != nil {
		return err
	}
	if b.IsOwner(userID) {
		return apperr.ErrSelfReference.WithMessage("the board owner cannot be removed")
	}
	if !b.IsMember(userID) {
		return apperr.ErrNotMember
	}

	err = uc.tx.WithTx(ctx, func(ctx context.Context) error {
		n, err := uc.tasks.UnassignUser(ctx, b.ID, userID)
		if err != nil {
			return uc.upstream(err, "failed to unassign tasks")
		}
		if err := uc.repo.RemoveMember(ctx, b.ID, userID); err != nil {
			return uc.upstream(err, "failed to remove member")
		}
		uc.logger.Info("board member removed",
			zap.String("board_id", b.ID),
			zap.String("user_id", userID),
			zap.Int("tasks_unassigned", n),
		)
		return nil
	})
	return err
}

func (uc *boardUseCase) SaveProfile(ctx context.Context) (*model.Member, error) {
	actor := auth.ActorFromContext(ctx)
	if actor == nil || actor.UserID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	name := actor.Name
	if name == "" {
		name = strings.SplitN(actor.Email, "@", 2)[0]
	}
	m := &model.Member{
		ID:          actor.UserID,
		Email:       strings.ToLower(actor.Email),
		DisplayName: name,
		LastLogin:   uc.now().UTC(),
	}
	if err := uc.members.Upsert(ctx, m); err != nil {
		return nil, uc.upstream(err, "failed to save profile")
	}
	return m, nil
}
