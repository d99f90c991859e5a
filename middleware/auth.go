// Package middleware carries the HTTP middleware shared by routes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"mentacrush_server/services"
)

type contextKey string

const sessionKey contextKey = "session"

// RequireAuth resolves the bearer token into a session and injects it into
// the request context. Requests without a valid token get 401.
func RequireAuth(auth *services.AuthService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			session, err := auth.ResolveSession(r.Context(), token)
			if err != nil {
				http.Error(w, `{"error": "Unauthenticated"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header, falling back
// to the token query parameter for websocket upgrades.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// SessionFrom returns the session stored by RequireAuth.
func SessionFrom(r *http.Request) (services.Session, bool) {
	session, ok := r.Context().Value(sessionKey).(services.Session)
	return session, ok
}
