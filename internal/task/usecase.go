package task

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/task/dto"
)

// UseCase methods act on behalf of the actor carried by ctx and require board membership.
type UseCase interface {
	Create(ctx context.Context, input *dto.CreateTaskInput) (*model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	ListByBoard(ctx context.Context, boardID string) ([]model.Task, error)
	Update(ctx context.Context, input *dto.UpdateTaskInput) (*model.Task, error)
	Assign(ctx context.Context, taskID string, userIDs []string) (*model.Task, error)
	ToggleComplete(ctx context.Context, taskID string) (*model.Task, error)
	Delete(ctx context.Context, taskID string) error
}
