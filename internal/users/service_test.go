package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockRepository struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[int64]*User), nextID: 1}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(ctx context.Context) ([]User, error) {
	var result []User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, nil
}

func (m *mockRepository) Create(ctx context.Context, u User) (int64, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return 0, ErrDuplicateEmail
		}
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = &u
	return u.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, name *string, isAdmin, isActive *bool) error {
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if isAdmin != nil {
		u.IsAdmin = *isAdmin
	}
	if isActive != nil {
		u.IsActive = *isActive
	}
	return nil
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "sato@example.com",
		Name:     "Sato",
		Password: "hunter2hunter2",
	}, 1)
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, "hunter2hunter2", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2hunter2")))
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateUserInput{Email: "sato@example.com", Name: "Sato", Password: "password1"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{Email: "sato@example.com", Name: "Other", Password: "password2"}, 1)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUpdatePartial(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateUserInput{Email: "sato@example.com", Name: "Sato", Password: "password1"}, 1)
	require.NoError(t, err)

	newName := "Sato Taro"
	updated, err := svc.Update(context.Background(), created.ID, UpdateUserInput{Name: &newName}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sato Taro", updated.Name)
	assert.False(t, updated.IsAdmin)

	_, err = svc.Update(context.Background(), 999, UpdateUserInput{Name: &newName}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsAdmin(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	admin, err := svc.Create(context.Background(), CreateUserInput{Email: "a@example.com", Name: "Admin", Password: "password1", IsAdmin: true}, 1)
	require.NoError(t, err)
	member, err := svc.Create(context.Background(), CreateUserInput{Email: "m@example.com", Name: "Member", Password: "password1"}, 1)
	require.NoError(t, err)

	ok, err := svc.IsAdmin(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsAdmin(context.Background(), member.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// deactivation strips the role
	inactive := false
	_, err = svc.Update(context.Background(), admin.ID, UpdateUserInput{IsActive: &inactive}, 1)
	require.NoError(t, err)
	ok, err = svc.IsAdmin(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.IsAdmin(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoles(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	admin, err := svc.Create(context.Background(), CreateUserInput{Email: "a@example.com", Name: "Admin", Password: "password1", IsAdmin: true}, 1)
	require.NoError(t, err)

	isAdmin, isActive, err := svc.Roles(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)
	assert.True(t, isActive)

	// a deactivated admin keeps the bit but loses the active flag
	inactive := false
	_, err = svc.Update(context.Background(), admin.ID, UpdateUserInput{IsActive: &inactive}, 1)
	require.NoError(t, err)
	isAdmin, isActive, err = svc.Roles(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)
	assert.False(t, isActive)

	_, _, err = svc.Roles(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
