// Package store declares the storage collaborator the lifecycle service writes through.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shutdown-tracker/internal/models"
)

// ShutdownStore persists shutdown records. Get, Update and Delete return an
// errs NotFound error when id is absent.
type ShutdownStore interface {
	// List returns every record, newest first.
	List(ctx context.Context) ([]models.Shutdown, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Shutdown, error)
	// Create assigns the record id.
	Create(ctx context.Context, s *models.Shutdown) error
	Update(ctx context.Context, s *models.Shutdown) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create assigns the user id.
	Create(ctx context.Context, u *models.User) error
	RecordLogin(ctx context.Context, id uuid.UUID, provider string, at time.Time) error
	UpdateAccessLevel(ctx context.Context, id uuid.UUID, level models.AccessLevel) (*models.User, error)
}

// SessionStore keeps hashed refresh tokens.
type SessionStore interface {
	// Save drops the user's expired tokens, revokes the oldest active ones
	// beyond maxActive-1, then stores rt.
	Save(ctx context.Context, rt *models.RefreshToken, maxActive int) error
	// FindActive looks up a non-revoked, unexpired token by jti and hash.
	FindActive(ctx context.Context, jti, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeByJTI(ctx context.Context, jti string) error
}
