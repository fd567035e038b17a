package users

import (
	"context"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/lunchline/lunchline/internal/shared"
)

// Service wraps account management rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Get loads one user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Create provisions an account with a bcrypt hashed password.
func (s *Service) Create(ctx context.Context, in CreateUserInput, actorID int64) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		IsAdmin:      in.IsAdmin,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "CREATE", id)
	return s.repo.Get(ctx, id)
}

// Update applies a partial account change.
func (s *Service) Update(ctx context.Context, id int64, in UpdateUserInput, actorID int64) (*User, error) {
	if err := s.repo.Update(ctx, id, in.Name, in.IsAdmin, in.IsActive); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "UPDATE", id)
	return s.repo.Get(ctx, id)
}

// IsAdmin reports whether the user holds the admin role. Unknown or inactive
// users never do.
func (s *Service) IsAdmin(ctx context.Context, id int64) (bool, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsActive && u.IsAdmin, nil
}

// Roles reports the raw admin and active bits for request gating.
func (s *Service) Roles(ctx context.Context, id int64) (isAdmin, isActive bool, err error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, false, err
	}
	return u.IsAdmin, u.IsActive, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, userID int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "users",
		EntityID: strconv.FormatInt(userID, 10),
	})
}
