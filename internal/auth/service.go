package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/lunchline/lunchline/internal/shared"
	"github.com/lunchline/lunchline/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	users users.Repository
}

// NewService constructs a new Service.
func NewService(userRepo users.Repository) *Service {
	return &Service{users: userRepo}
}

// Authenticate validates email/password credentials. Every failure path
// collapses to the same error so callers cannot probe for accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}
