// Package notify delivers out-of-band messages about task changes to
// users that opted in with a Telegram chat id.
package notify

import (
	"context"

	"taskhub/internal/model"
)

// Notifier receives task lifecycle events worth telling users about.
type Notifier interface {
	// TaskAssigned fires when a task is delegated to a new assignee.
	TaskAssigned(ctx context.Context, task *model.Task, assignee *model.User) error
	// TaskDue fires for tasks approaching their due date.
	TaskDue(ctx context.Context, task *model.Task, recipient *model.User) error
}

// Noop is used when no notification transport is configured.
type Noop struct{}

func (Noop) TaskAssigned(context.Context, *model.Task, *model.User) error { return nil }
func (Noop) TaskDue(context.Context, *model.Task, *model.User) error      { return nil }
