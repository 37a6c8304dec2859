package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	base := Validationf("field %s is bad", "title")

	t.Run("sentinel matching survives wrapping", func(t *testing.T) {
		wrapped := E("create task", base)
		assert.ErrorIs(t, wrapped, ErrValidation)
		assert.Equal(t, "create task: "+base.Error(), wrapped.Error())
	})

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, E("noop", nil))
	})

	t.Run("unwrap returns the cause", func(t *testing.T) {
		wrapped := E("op", base)
		assert.Equal(t, base, errors.Unwrap(wrapped))
	})

	t.Run("helpers carry their sentinels", func(t *testing.T) {
		assert.ErrorIs(t, NotFoundf("task %d", 1), ErrNotFound)
		assert.ErrorIs(t, Forbiddenf("no"), ErrForbidden)
		assert.ErrorIs(t, Conflictf("dup"), ErrConflict)
		assert.ErrorIs(t, Uploadf("too many"), ErrUpload)
	})
}
