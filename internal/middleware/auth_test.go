package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/services"
)

type stubAuthn struct {
	user *models.User
	err  error
}

func (s stubAuthn) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token != "good" {
		return nil, fmt.Errorf("%w: bad token", services.ErrUnauthorized)
	}
	return s.user, s.err
}

func TestJWTAuth(t *testing.T) {
	u := &models.User{Email: "ops@example.com"}
	var seen *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		header string
		authn  stubAuthn
		want   int
	}{
		{"missing header", "", stubAuthn{user: u}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", stubAuthn{user: u}, http.StatusUnauthorized},
		{"bad token", "Bearer nope", stubAuthn{user: u}, http.StatusUnauthorized},
		{"store failure", "Bearer good", stubAuthn{err: errors.New("db down")}, http.StatusInternalServerError},
		{"ok", "Bearer good", stubAuthn{user: u}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			NewAuthMiddleware(tc.authn, zap.NewNop()).JWTAuth(next).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusNoContent {
				assert.Same(t, u, seen)
			}
		})
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	assert.Nil(t, UserFromContext(context.Background()))
}
