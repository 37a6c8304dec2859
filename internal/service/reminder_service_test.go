package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/model"
)

type recordingNotifier struct {
	assigned     []uint
	assignedChat map[uint]int64  // task id -> assignee chat id
	due          map[uint]string // task id -> recipient email
}

func (r *recordingNotifier) TaskAssigned(_ context.Context, task *model.Task, assignee *model.User) error {
	r.assigned = append(r.assigned, task.ID)
	if r.assignedChat == nil {
		r.assignedChat = map[uint]int64{}
	}
	r.assignedChat[task.ID] = assignee.TelegramChatID
	return nil
}

func (r *recordingNotifier) TaskDue(_ context.Context, task *model.Task, recipient *model.User) error {
	if r.due == nil {
		r.due = map[uint]string{}
	}
	r.due[task.ID] = recipient.Email
	return nil
}

func TestReminderServiceNotifyDue(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)
	alice := f.user(t, "alice@example.com", model.RoleUser)
	bob := f.user(t, "bob@example.com", model.RoleUser)

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 15, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	ownedDue, err := f.svc.Create(ctx, alice, TaskInput{Title: "due today", DueDate: &today}, nil)
	require.NoError(t, err)
	assignedDue, err := f.svc.Create(ctx, alice, TaskInput{Title: "delegated", DueDate: &today, AssignedToID: &bob.ID}, nil)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, alice, TaskInput{Title: "due later", DueDate: &tomorrow}, nil)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	reminders := NewReminderService(f.tasks, notifier)
	require.NoError(t, reminders.NotifyDue(ctx, today))

	assert.Len(t, notifier.due, 2)
	// The owner is the fallback recipient; the assignee wins otherwise.
	assert.Equal(t, "alice@example.com", notifier.due[ownedDue.ID])
	assert.Equal(t, "bob@example.com", notifier.due[assignedDue.ID])
}
