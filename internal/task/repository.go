package task

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type Repository interface {
	Create(ctx context.Context, t *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	FindByBoard(ctx context.Context, boardID string) ([]model.Task, error)
	// TitleExists matches exactly within one board, ignoring excludeID.
	TitleExists(ctx context.Context, boardID, title, excludeID string) (bool, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id string) error
}

// BoardReader loads the board a task belongs to.
type BoardReader interface {
	FindByID(ctx context.Context, id string) (*model.Board, error)
}
