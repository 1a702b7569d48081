package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"shutdown-tracker/internal/errs"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", errs.Permission("update", "view-only access"))

	assert.Equal(t, errs.KindPermission, errs.KindOf(err))
	assert.True(t, errs.IsPermission(err))
	assert.False(t, errs.IsValidation(err))
	assert.True(t, errors.Is(err, &errs.Error{Kind: errs.KindPermission}))
}

func TestValidationWrap_KeepsSentinel(t *testing.T) {
	err := errs.ValidationWrap("clear", errs.ErrAlreadyCleared)

	assert.True(t, errs.IsValidation(err))
	assert.ErrorIs(t, err, errs.ErrAlreadyCleared)
	assert.Equal(t, "clear: shutdown is already cleared", err.Error())
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, errs.Kind(""), errs.KindOf(errors.New("boom")))
	assert.False(t, errs.IsNotFound(nil))
}

func TestNotFound_Message(t *testing.T) {
	err := errs.NotFound("get", "shutdown", errors.New("sql: no rows in result set"))
	assert.Equal(t, "get: shutdown not found: sql: no rows in result set", err.Error())
}
