package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/models"
)

type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.NewSelect().
		Model(&users).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getWhere(ctx, "id = ?", id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getWhere(ctx, "LOWER(email) = LOWER(?)", email)
}

func (s *UserStore) getWhere(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	u := new(models.User)
	err := s.db.NewSelect().Model(u).Where(query, arg).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("get user", "user", err)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) UpdateAccessLevel(ctx context.Context, id uuid.UUID, level models.AccessLevel) (*models.User, error) {
	u := new(models.User)
	err := s.db.NewUpdate().
		Model(u).
		Set("access_level = ?", level).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("update user", "user", err)
		}
		return nil, fmt.Errorf("update access level: %w", err)
	}
	return u, nil
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(u).Exec(ctx); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserStore) RecordLogin(ctx context.Context, id uuid.UUID, provider string, at time.Time) error {
	_, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("provider = ?", provider).
		Set("last_login_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}
