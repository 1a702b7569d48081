package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/models"
)

type SessionStore struct {
	db *bun.DB
}

func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save stores a hashed refresh token and keeps at most maxActive sessions per user.
func (s *SessionStore) Save(ctx context.Context, rt *models.RefreshToken, maxActive int) error {
	// 1) cleanup expired tokens for user
	_, _ = s.db.NewDelete().
		Model((*models.RefreshToken)(nil)).
		Where("user_id = ? AND expires_at < now()", rt.UserID).
		Exec(ctx)

	// 2) enforce max active sessions (non-revoked & not expired)
	if maxActive > 0 {
		var count int
		err := s.db.NewSelect().
			ColumnExpr("count(*)").
			Table("refresh_tokens").
			Where("user_id = ? AND revoked = false AND expires_at > now()", rt.UserID).
			Scan(ctx, &count)
		if err == nil && count >= maxActive {
			toRemove := count - maxActive + 1
			_, _ = s.db.NewDelete().
				Model((*models.RefreshToken)(nil)).
				Where("id IN (SELECT id FROM refresh_tokens WHERE user_id = ? AND revoked = false AND expires_at > now() ORDER BY created_at ASC LIMIT ?)", rt.UserID, toRemove).
				Exec(ctx)
		}
	}

	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if _, err := s.db.NewInsert().Model(rt).Exec(ctx); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *SessionStore) FindActive(ctx context.Context, jti, tokenHash string) (*models.RefreshToken, error) {
	rt := new(models.RefreshToken)
	err := s.db.NewSelect().
		Model(rt).
		Where("jti = ? AND token_hash = ? AND revoked = false AND expires_at > now()", jti, tokenHash).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("find session", "refresh token", err)
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return rt, nil
}

func (s *SessionStore) Revoke(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.NewUpdate().
		Model((*models.RefreshToken)(nil)).
		Set("revoked = true").
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (s *SessionStore) RevokeByJTI(ctx context.Context, jti string) error {
	_, err := s.db.NewUpdate().
		Model((*models.RefreshToken)(nil)).
		Set("revoked = true").
		Where("jti = ?", jti).
		Exec(ctx)
	return err
}
