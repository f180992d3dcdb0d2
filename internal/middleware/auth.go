package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/amaralkaff/lsa-backend/internal/metrics"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/service"
)

type contextKey string

const userKey contextKey = "user"

// Messages are fixed so that a missing, malformed, expired or forged token
// all produce the same response.
const (
	msgUnauthenticated = "Could not validate credentials"
	msgInactive        = "Inactive user"
	msgUnavailable     = "Service temporarily unavailable"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Authenticate returns middleware that resolves the Bearer token from the
// Authorization header and stores the user in the request context.
func Authenticate(auth Authenticator, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				m.RecordAuthRejection("unauthenticated")
				unauthorized(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					m.RecordAuthRejection("unauthenticated")
					unauthorized(w, r)
					return
				}
				m.RecordAuthRejection("store_unavailable")
				slog.Error("resolving identity", "error", err, "request_id", chimw.GetReqID(r.Context()))
				writeError(w, r, http.StatusServiceUnavailable, msgUnavailable)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireActive rejects authenticated users whose account is deactivated.
// It must run after Authenticate.
func RequireActive(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				m.RecordAuthRejection("unauthenticated")
				unauthorized(w, r)
				return
			}
			if err := service.RequireActive(user); err != nil {
				m.RecordAuthRejection("inactive")
				writeError(w, r, http.StatusForbidden, msgInactive)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// bearerToken parses "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, r, http.StatusUnauthorized, msgUnauthenticated)
}
