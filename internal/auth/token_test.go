package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/model"
)

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	user := &model.User{ID: 42, Role: model.RoleAdmin}

	t.Run("round trip", func(t *testing.T) {
		raw, err := issuer.Issue(user, time.Now())
		require.NoError(t, err)

		claims, err := issuer.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, model.RoleAdmin, claims.Role)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		raw, err := issuer.Issue(user, time.Now().Add(-2*time.Hour))
		require.NoError(t, err)

		_, err = issuer.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		raw, err := NewTokenIssuer("other-secret", time.Hour).Issue(user, time.Now())
		require.NoError(t, err)

		_, err = issuer.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.Error(t, err)
	})
}

func TestPassword(t *testing.T) {
	hashed, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)
	assert.True(t, CheckPassword(hashed, "password123"))
	assert.False(t, CheckPassword(hashed, "wrongpassword"))
}
