package dto

import (
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *model.User `json:"user"`
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     string
}
