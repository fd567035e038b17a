package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunchline/lunchline/internal/shared"
)

type stubRoles struct {
	isAdmin  bool
	isActive bool
	err      error
}

func (s stubRoles) Roles(ctx context.Context, id int64) (bool, bool, error) {
	return s.isAdmin, s.isActive, s.err
}

func requestWithUser(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	sess := &shared.Session{ID: "sess"}
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestRequireUser(t *testing.T) {
	var seen Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		seen = p
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no session", func(t *testing.T) {
		m := Middleware{Users: stubRoles{isActive: true}}
		res := httptest.NewRecorder()
		m.RequireUser(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/orders", nil))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("session without user", func(t *testing.T) {
		m := Middleware{Users: stubRoles{isActive: true}}
		res := httptest.NewRecorder()
		m.RequireUser(next).ServeHTTP(res, requestWithUser(""))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("garbage user id", func(t *testing.T) {
		m := Middleware{Users: stubRoles{isActive: true}}
		res := httptest.NewRecorder()
		m.RequireUser(next).ServeHTTP(res, requestWithUser("not-a-number"))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("inactive account", func(t *testing.T) {
		m := Middleware{Users: stubRoles{isAdmin: true, isActive: false}}
		res := httptest.NewRecorder()
		m.RequireUser(next).ServeHTTP(res, requestWithUser("7"))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("active member stores principal", func(t *testing.T) {
		m := Middleware{Users: stubRoles{isActive: true}}
		res := httptest.NewRecorder()
		m.RequireUser(next).ServeHTTP(res, requestWithUser("7"))
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, Principal{UserID: 7, IsAdmin: false}, seen)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("member is forbidden", func(t *testing.T) {
		m := Middleware{Users: stubRoles{isActive: true}}
		res := httptest.NewRecorder()
		m.RequireAdmin(next).ServeHTTP(res, requestWithUser("7"))
		assert.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		m := Middleware{Users: stubRoles{isAdmin: true, isActive: true}}
		res := httptest.NewRecorder()
		m.RequireAdmin(next).ServeHTTP(res, requestWithUser("7"))
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("revoked admin is unauthorized", func(t *testing.T) {
		m := Middleware{Users: stubRoles{isAdmin: true, isActive: false}}
		res := httptest.NewRecorder()
		m.RequireAdmin(next).ServeHTTP(res, requestWithUser("7"))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})
}
