package user

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/user/dto"
)

type UseCase interface {
	Login(ctx context.Context, input *dto.LoginInput) (*dto.LoginResult, error)
	Create(ctx context.Context, input *dto.CreateUserInput) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id, actorID string) error
	// EnsureAdmin creates the admin account, or resets it when force is set.
	EnsureAdmin(ctx context.Context, input *dto.CreateUserInput, force bool) (*model.User, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *model.User) (string, time.Time, error)
}
