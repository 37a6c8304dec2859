package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewUserService(repository.NewUserRepository(db), issuer)
}

func TestUserServiceRegister(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	t.Run("creates a user with a token", func(t *testing.T) {
		user, token, err := svc.Register(ctx, RegisterInput{
			Name: "Alice", Email: "Alice@Example.com", Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "password123", user.Password)
	})

	t.Run("self-registration cannot pick a role", func(t *testing.T) {
		user, _, err := svc.Register(ctx, RegisterInput{
			Name: "Eve", Email: "eve@example.com", Password: "pw", Role: model.RoleAdmin,
		})
		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, user.Role)
	})

	t.Run("duplicate email conflicts and creates nothing", func(t *testing.T) {
		_, _, err := svc.Register(ctx, RegisterInput{
			Name: "Impostor", Email: "alice@example.com", Password: "other",
		})
		assert.ErrorIs(t, err, apperr.ErrConflict)

		users, err := svc.List(ctx)
		require.NoError(t, err)
		seen := 0
		for _, u := range users {
			if u.Email == "alice@example.com" {
				seen++
			}
		}
		assert.Equal(t, 1, seen)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, _, err := svc.Register(ctx, RegisterInput{Email: "x@example.com"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestUserServiceLogin(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	_, _, err := svc.Register(ctx, RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "password123",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, token, err := svc.Login(ctx, "alice@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alice@example.com", "wrongpassword")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("unknown email looks identical", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestUserServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)

	admin, err := svc.CreateByAdmin(ctx, RegisterInput{
		Name: "Admin", Email: "admin@example.com", Password: "pw", Role: model.RoleAdmin,
	})
	require.NoError(t, err)
	alice, _, err := svc.Register(ctx, RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "pw",
	})
	require.NoError(t, err)

	t.Run("self-update strips the role field silently", func(t *testing.T) {
		role := model.RoleAdmin
		name := "Alice Updated"
		got, err := svc.Update(ctx, alice, alice.ID, UserUpdate{Name: &name, Role: &role})
		require.NoError(t, err)
		assert.Equal(t, "Alice Updated", got.Name)
		assert.Equal(t, model.RoleUser, got.Role)
	})

	t.Run("admin may change roles", func(t *testing.T) {
		role := model.RoleAdmin
		got, err := svc.Update(ctx, admin, alice.ID, UserUpdate{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, got.Role)
	})

	t.Run("cannot update a foreign user", func(t *testing.T) {
		bob, _, err := svc.Register(ctx, RegisterInput{
			Name: "Bob", Email: "bob@example.com", Password: "pw",
		})
		require.NoError(t, err)

		name := "Hacked"
		_, err = svc.Update(ctx, bob, admin.ID, UserUpdate{Name: &name})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("cannot view a foreign user", func(t *testing.T) {
		bob, err := svc.users.FindByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		_, err = svc.Get(ctx, bob, admin.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}
