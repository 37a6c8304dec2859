package auth

import "taskhub/internal/model"

// Action is something a caller wants to do with a task.
type Action int

const (
	// ActionView covers reading a task and streaming its documents.
	ActionView Action = iota
	// ActionEdit covers update and delete. An assignee may view a task
	// but never edit it; that asymmetry is deliberate.
	ActionEdit
)

// Authorizer is the single capability check for task access. Handlers
// call this instead of re-deriving role rules per endpoint.
type Authorizer struct{}

// Can reports whether the caller may perform the action on the task.
func (Authorizer) Can(caller *model.User, action Action, task *model.Task) bool {
	if caller == nil || task == nil {
		return false
	}
	if caller.IsAdmin() || task.IsOwner(caller) {
		return true
	}
	return action == ActionView && task.IsAssignee(caller)
}

// CanTouchUser reports whether the caller may read or update the target
// user record: self or admin.
func (Authorizer) CanTouchUser(caller *model.User, targetID uint) bool {
	if caller == nil {
		return false
	}
	return caller.IsAdmin() || caller.ID == targetID
}
