package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskhub/internal/model"
)

func TestAuthorizerCan(t *testing.T) {
	admin := &model.User{ID: 1, Role: model.RoleAdmin}
	owner := &model.User{ID: 2, Role: model.RoleUser}
	assignee := &model.User{ID: 3, Role: model.RoleUser}
	stranger := &model.User{ID: 4, Role: model.RoleUser}

	task := &model.Task{ID: 10, UserID: owner.ID, AssignedToID: &assignee.ID}

	var authz Authorizer

	tests := []struct {
		name   string
		caller *model.User
		action Action
		want   bool
	}{
		{"admin views", admin, ActionView, true},
		{"admin edits", admin, ActionEdit, true},
		{"owner views", owner, ActionView, true},
		{"owner edits", owner, ActionEdit, true},
		{"assignee views", assignee, ActionView, true},
		{"assignee cannot edit", assignee, ActionEdit, false},
		{"stranger cannot view", stranger, ActionView, false},
		{"stranger cannot edit", stranger, ActionEdit, false},
		{"nil caller denied", nil, ActionView, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authz.Can(tt.caller, tt.action, task))
		})
	}

	t.Run("nil task denied", func(t *testing.T) {
		assert.False(t, authz.Can(admin, ActionView, nil))
	})
}

func TestAuthorizerCanTouchUser(t *testing.T) {
	admin := &model.User{ID: 1, Role: model.RoleAdmin}
	user := &model.User{ID: 2, Role: model.RoleUser}

	var authz Authorizer

	assert.True(t, authz.CanTouchUser(admin, 2))
	assert.True(t, authz.CanTouchUser(user, 2))
	assert.False(t, authz.CanTouchUser(user, 1))
	assert.False(t, authz.CanTouchUser(nil, 1))
}
