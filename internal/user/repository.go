package user

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type Repository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
	// Exists reports whether username or email is already taken.
	Exists(ctx context.Context, username, email string) (bool, error)
}
