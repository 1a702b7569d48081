package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/store/memory"
)

func TestUserService(t *testing.T) {
	boss := models.User{ID: uuid.New(), Email: "boss@example.com", Role: models.RoleAdmin}
	levelAdmin := models.User{ID: uuid.New(), Email: "lvl@example.com", AccessLevel: models.AccessAdmin}
	plain := models.User{ID: uuid.New(), Email: "plain@example.com"}
	svc := NewUserService(memory.NewUserStore(boss, levelAdmin, plain), zap.NewNop())
	ctx := context.Background()

	t.Run("list requires admin role", func(t *testing.T) {
		_, err := svc.List(ctx, &levelAdmin)
		assert.True(t, errs.IsPermission(err), "admin access level alone is not enough")

		users, err := svc.List(ctx, &boss)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, models.AccessAdmin, users[0].AccessLevel)
		assert.Equal(t, models.AccessDriver, users[2].AccessLevel, "missing level defaults to driver")
	})

	t.Run("update access level", func(t *testing.T) {
		info, err := svc.UpdateAccessLevel(ctx, plain.ID, models.UpdateAccessLevelRequest{AccessLevel: models.AccessUser}, &boss)
		require.NoError(t, err)
		assert.Equal(t, models.AccessUser, info.AccessLevel)
		assert.True(t, info.CanEdit)
	})

	t.Run("rejections", func(t *testing.T) {
		_, err := svc.UpdateAccessLevel(ctx, boss.ID, models.UpdateAccessLevelRequest{AccessLevel: models.AccessDriver}, &boss)
		assert.ErrorIs(t, err, errs.ErrSelfAccessChange)

		_, err = svc.UpdateAccessLevel(ctx, plain.ID, models.UpdateAccessLevelRequest{AccessLevel: "root"}, &boss)
		assert.True(t, errs.IsValidation(err))

		_, err = svc.UpdateAccessLevel(ctx, uuid.New(), models.UpdateAccessLevelRequest{AccessLevel: models.AccessUser}, &boss)
		assert.True(t, errs.IsNotFound(err))

		_, err = svc.UpdateAccessLevel(ctx, plain.ID, models.UpdateAccessLevelRequest{AccessLevel: models.AccessAdmin}, &plain)
		assert.True(t, errs.IsPermission(err))
	})
}
