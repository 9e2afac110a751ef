package middleware

import (
	"context"
	"net/http"

	"github.com/qnetdash/quorum-dashboard-be/internal/auth"
	"github.com/qnetdash/quorum-dashboard-be/internal/http/respond"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth validates the session cookie and injects the authenticated user id
// into the request context. Requests without a valid token get a 401.
func Auth(tokens *auth.TokenManager, cookieName string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(cookieName)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := tokens.Parse(cookie.Value)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		id, err := claims.UserID()
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id set by Auth.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
