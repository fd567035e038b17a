package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/lunchline/lunchline/internal/shared"
)

// Principal is the resolved caller identity for one request.
type Principal struct {
	UserID  int64
	IsAdmin bool
}

type principalContextKey struct{}

// PrincipalFromContext extracts the resolved principal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// RoleLookup resolves the role bits for an account. Declared here so the
// gate does not depend on the users package, which mounts gated routes of
// its own.
type RoleLookup interface {
	Roles(ctx context.Context, id int64) (isAdmin, isActive bool, err error)
}

// Middleware resolves the session user and gates routes on the admin bit.
// The role is read from the database on every request so a revoked admin
// loses access without waiting for session expiry.
type Middleware struct {
	Users  RoleLookup
	Logger *slog.Logger
}

// RequireUser ensures a logged-in, active account and stores the principal.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := m.resolve(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin ensures the caller holds the admin role.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := m.resolve(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if !principal.IsAdmin {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) resolve(r *http.Request) (Principal, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return Principal{}, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return Principal{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac parse user id", slog.String("value", raw))
		}
		return Principal{}, false
	}
	isAdmin, isActive, err := m.Users.Roles(r.Context(), id)
	if err != nil || !isActive {
		return Principal{}, false
	}
	return Principal{UserID: id, IsAdmin: isAdmin}, true
}
