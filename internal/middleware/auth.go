package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tasknest/tasknest-backend/internal/api/httpx"
	"github.com/tasknest/tasknest-backend/internal/models"
)

type ctxKey int

const (
	ctxUserKey ctxKey = iota
	ctxSessionKey
)

// CurrentUser returns the authenticated user placed in the context by Auth.
func CurrentUser(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxUserKey).(models.User)
	return u, ok
}

// SessionID returns the session behind the request's token.
func SessionID(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxSessionKey).(string)
	return s, ok
}

// Authenticator resolves a bearer token to a live user and session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, string, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(a Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: a}
}

// Require rejects requests without a valid, unrevoked token.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.Error(w, http.StatusUnauthorized, "Authentication required.", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		u, sessionID, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "Invalid or expired token.", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey, u)
		ctx = context.WithValue(ctx, ctxSessionKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
