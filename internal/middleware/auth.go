package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/services"
)

// Authenticator turns an access token into the caller's profile.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type AuthMiddleware struct {
	authn Authenticator
	logr  *zap.Logger
}

type contextKey string

const ContextUserKey contextKey = "user"

// NewAuthMiddleware creates a reusable JWT auth middleware instance
func NewAuthMiddleware(authn Authenticator, logr *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{authn: authn, logr: logr}
}

// JWTAuth validates the bearer token and attaches the user to the request context
func (m *AuthMiddleware) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			http.Error(w, "invalid token format", http.StatusUnauthorized)
			return
		}

		user, err := m.authn.Authenticate(r.Context(), tokenString)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				m.logr.Warn("token rejected", zap.Error(err))
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			m.logr.Error("failed to authenticate request", zap.Error(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		ctx := WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(ContextUserKey).(*models.User)
	return u
}
