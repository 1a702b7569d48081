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

type ShutdownStore struct {
	db *bun.DB
}

func NewShutdownStore(db *bun.DB) *ShutdownStore {
	return &ShutdownStore{db: db}
}

// List returns every shutdown ordered by created_at DESC.
func (s *ShutdownStore) List(ctx context.Context) ([]models.Shutdown, error) {
	var out []models.Shutdown
	err := s.db.NewSelect().
		Model(&out).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shutdowns: %w", err)
	}
	return out, nil
}

func (s *ShutdownStore) Get(ctx context.Context, id uuid.UUID) (*models.Shutdown, error) {
	rec := new(models.Shutdown)
	err := s.db.NewSelect().
		Model(rec).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("get shutdown", "shutdown", err)
		}
		return nil, fmt.Errorf("get shutdown: %w", err)
	}
	return rec, nil
}

func (s *ShutdownStore) Create(ctx context.Context, rec *models.Shutdown) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert shutdown: %w", err)
	}
	return nil
}

// Update writes every mutable column. geometry_type, created_by and
// created_at are never rewritten.
func (s *ShutdownStore) Update(ctx context.Context, rec *models.Shutdown) error {
	res, err := s.db.NewUpdate().
		Model(rec).
		Column("title", "center_lat", "center_lng", "radius_km", "coordinates",
			"from_city", "to_city", "reason", "action", "status", "region", "notes",
			"cleared_by", "cleared_at", "activity_log").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update shutdown: %w", err)
	}
	return checkAffected("update shutdown", res)
}

func (s *ShutdownStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*models.Shutdown)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete shutdown: %w", err)
	}
	return checkAffected("delete shutdown", res)
}

func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return errs.NotFound(op, "shutdown", nil)
	}
	return nil
}
