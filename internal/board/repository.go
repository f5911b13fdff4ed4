package board

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type Repository interface {
	Create(ctx context.Context, b *model.Board) error
	FindByID(ctx context.Context, id string) (*model.Board, error)
	// FindByMember lists boards the user owns or belongs to.
	FindByMember(ctx context.Context, userID string) ([]model.Board, error)
	Update(ctx context.Context, b *model.Board) error
	AddMember(ctx context.Context, boardID, userID string) error
	RemoveMember(ctx context.Context, boardID, userID string) error
	Delete(ctx context.Context, id string) error
}

// MemberRepository stores board user profiles.
type MemberRepository interface {
	Upsert(ctx context.Context, m *model.Member) error
	FindByID(ctx context.Context, id string) (*model.Member, error)
	FindByEmail(ctx context.Context, email string) (*model.Member, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Member, error)
}

// TaskStore is what board operations need from the task store.
type TaskStore interface {
	CountByBoard(ctx context.Context, boardID string) (int64, error)
	FindByBoard(ctx context.Context, boardID string) ([]model.Task, error)
	// UnassignUser drops userID from every task of the board in one bulk write.
	UnassignUser(ctx context.Context, boardID, userID string) (int, error)
}

// Transactor groups store writes into one unit when the deployment supports it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
