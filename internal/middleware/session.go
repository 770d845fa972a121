// Package middleware provides HTTP middlewares for session authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/GophPayroll/internal/models"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "payroll_sid"

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityResolver maps a session token to the identity it was issued for.
type IdentityResolver interface {
	Identity(ctx context.Context, token string) (models.Identity, error)
}

// SessionAuth rejects requests without a valid session cookie.
//
// The resolved identity is stored in the request context and can be read
// downstream with GetIdentityFromContext. A resolver error that is not
// errUnauthenticated is treated as a server failure.
func SessionAuth(resolver IdentityResolver, errUnauthenticated error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}

			id, err := resolver.Identity(r.Context(), cookie.Value)
			if errors.Is(err, errUnauthenticated) {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin allows only identities with the admin role. It must run after SessionAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		if !id.IsAdmin() {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentityFromContext extracts the authenticated identity from ctx.
func GetIdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
