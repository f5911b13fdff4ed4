package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/user"
	"github.com/fekuna/omnipos-warehouse/internal/user/dto"
)

const minPasswordLength = 6

type userUseCase struct {
	repo   user.Repository
	tokens user.TokenIssuer
	logger logger.ZapLogger
	now    func() time.Time
	cost   int
}

func NewUserUseCase(repo user.Repository, tokens user.TokenIssuer, log logger.ZapLogger) user.UseCase {
	return &userUseCase{
		repo:   repo,
		tokens: tokens,
		logger: log,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}
}

func (uc *userUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.LoginResult, error) {
	u, err := uc.repo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		uc.logger.Error("failed to load user", zap.Error(err))
		return nil, apperr.Upstream(err, "failed to load user")
	}
	// Same answer for unknown user and wrong password
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)) != nil {
		return nil, apperr.ErrUnauthenticated.WithMessage("invalid username or password")
	}

	token, exp, err := uc.tokens.Issue(u)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to issue token")
	}
	uc.logger.Info("user logged in", zap.String("user_id", u.ID))
	return &dto.LoginResult{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp, User: u}, nil
}

func (uc *userUseCase) validate(input *dto.CreateUserInput) (*dto.CreateUserInput, error) {
	out := &dto.CreateUserInput{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
		Role:     strings.TrimSpace(input.Role),
	}
	if out.Role == "" {
		out.Role = model.RoleStaff
	}
	if out.Username == "" {
		return nil, apperr.Validation("username is required")
	}
	if _, err := mail.ParseAddress(out.Email); err != nil {
		return nil, apperr.Validation("invalid email address %q", out.Email)
	}
	if len(out.Password) < minPasswordLength {
		return nil, apperr.Validation("password should be at least %d characters", minPasswordLength)
	}
	if !model.IsValidRole(out.Role) {
		return nil, apperr.Validation("invalid role %q", out.Role)
	}
	return out, nil
}

func (uc *userUseCase) Create(ctx context.Context, input *dto.CreateUserInput) (*model.User, error) {
	in, err := uc.validate(input)
	if err != nil {
		return nil, err
	}
	taken, err := uc.repo.Exists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to check user")
	}
	if taken {
		return nil, apperr.ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to hash password")
	}
	u := &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		CreatedAt:    uc.now().UTC(),
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		uc.logger.Error("failed to create user", zap.Error(err))
		return nil, apperr.Upstream(err, "failed to create user")
	}
	return u, nil
}

func (uc *userUseCase) List(ctx context.Context) ([]model.User, error) {
	users, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to list users")
	}
	return users, nil
}

func (uc *userUseCase) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return apperr.Validation("you cannot delete your own account")
	}
	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.Upstream(err, "failed to load user")
	}
	if u == nil {
		return apperr.NotFound("user")
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.Error("failed to delete user", zap.Error(err))
		return apperr.Upstream(err, "failed to delete user")
	}
	return nil
}

func (uc *userUseCase) EnsureAdmin(ctx context.Context, input *dto.CreateUserInput, force bool) (*model.User, error) {
	in := *input
	in.Role = model.RoleAdmin
	existing, err := uc.repo.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load user")
	}
	if existing == nil {
		return uc.Create(ctx, &in)
	}
	if !force {
		return nil, apperr.ErrDuplicateUser.WithMessage("user %q already exists", existing.Username)
	}

	valid, err := uc.validate(&in)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(valid.Password), uc.cost)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to hash password")
	}
	existing.Email = valid.Email
	existing.PasswordHash = string(hash)
	existing.Role = model.RoleAdmin
	if err := uc.repo.Update(ctx, existing); err != nil {
		return nil, apperr.Upstream(err, "failed to update user")
	}
	return existing, nil
}
