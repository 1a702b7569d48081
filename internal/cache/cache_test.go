package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shutdown-tracker/internal/config"
	"shutdown-tracker/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()

	client, err := Connect(ctx, &config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)

	c := New(client, time.Minute)
	assert.Nil(t, c)

	recs, ok, err := c.GetAll(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, recs)

	assert.NoError(t, c.SetAll(ctx, []models.Shutdown{{Title: "x"}}))
	assert.NoError(t, c.Invalidate(ctx))
}
