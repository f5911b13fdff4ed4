package board

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/board/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

// UseCase methods act on behalf of the actor carried by ctx.
type UseCase interface {
	CreateBoard(ctx context.Context, input *dto.BoardInput) (*model.Board, error)
	GetBoard(ctx context.Context, id string) (*dto.BoardDetail, error)
	ListBoards(ctx context.Context) ([]model.Board, error)
	UpdateBoard(ctx context.Context, id string, input *dto.BoardInput) (*model.Board, error)
	DeleteBoard(ctx context.Context, id string) error

	AddMember(ctx context.Context, boardID, email string) (*model.Member, error)
	RemoveMember(ctx context.Context, boardID, userID string) error

	// SaveProfile records the actor's identity as a member profile.
	SaveProfile(ctx context.Context) (*model.Member, error)
}
