package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lunchline/lunchline/internal/shared"
	"github.com/lunchline/lunchline/internal/users"
)

type stubUserRepo struct {
	byEmail map[string]*users.User
}

func (s *stubUserRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) List(ctx context.Context) ([]users.User, error) { return nil, nil }

func (s *stubUserRepo) Create(ctx context.Context, u users.User) (int64, error) { return 0, nil }

func (s *stubUserRepo) Update(ctx context.Context, id int64, name *string, isAdmin, isActive *bool) error {
	return nil
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{byEmail: map[string]*users.User{
		"sato@example.com": {ID: 1, Email: "sato@example.com", PasswordHash: string(hash), IsActive: true},
		"left@example.com": {ID: 2, Email: "left@example.com", PasswordHash: string(hash), IsActive: false},
	}}
	svc := NewService(repo)

	t.Run("valid credentials", func(t *testing.T) {
		u, err := svc.Authenticate(context.Background(), "sato@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "sato@example.com", "battery staple")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "correct horse")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "left@example.com", "correct horse")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}
