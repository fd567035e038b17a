package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lunchline/lunchline/internal/auth"
	"github.com/lunchline/lunchline/internal/shared"
	"github.com/lunchline/lunchline/internal/users"
	_ "github.com/lunchline/lunchline/testing"
)

type stubRepo struct {
	user *users.User
}

func (s *stubRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, users.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, users.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) List(ctx context.Context) ([]users.User, error) { return nil, nil }

func (s *stubRepo) Create(ctx context.Context, u users.User) (int64, error) { return 0, nil }

func (s *stubRepo) Update(ctx context.Context, id int64, name *string, isAdmin, isActive *bool) error {
	return nil
}

func newAuthHandler(t *testing.T, repo users.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func doLogin(t *testing.T, handler *auth.Handler, sm *shared.SessionManager, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.NoError(t, sm.Commit(ctx, res, sess))
	return res
}

func TestLoginSuccess(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	handler, sm := newAuthHandler(t, &stubRepo{user: &users.User{
		ID:           1,
		Email:        "user@test.local",
		Name:         "User",
		PasswordHash: string(hashed),
		IsAdmin:      true,
		IsActive:     true,
	}})

	res := doLogin(t, handler, sm, `{"email":"user@test.local","password":"correctpass"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		UserID    int64  `json:"user_id"`
		IsAdmin   bool   `json:"is_admin"`
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, int64(1), payload.UserID)
	assert.True(t, payload.IsAdmin)
	assert.NotEmpty(t, payload.CSRFToken)

	// Commit runs after the handler has written the response here, so read
	// the header map rather than the Result snapshot.
	cookies := res.Header().Values("Set-Cookie")
	require.Len(t, cookies, 1)
	assert.Contains(t, cookies[0], "test_session=")
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	handler, sm := newAuthHandler(t, &stubRepo{user: &users.User{
		ID:           1,
		Email:        "user@test.local",
		PasswordHash: string(hashed),
		IsActive:     true,
	}})

	res := doLogin(t, handler, sm, `{"email":"user@test.local","password":"wrongpass"}`)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginMalformedBody(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{})

	res := doLogin(t, handler, sm, `{"email":`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
