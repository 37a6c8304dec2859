package service

import (
	"context"
	"log"
	"time"

	"taskhub/internal/notify"
	"taskhub/internal/repository"
)

// ReminderService pushes due-date notifications for unfinished tasks.
type ReminderService struct {
	tasks    *repository.TaskRepository
	notifier notify.Notifier
}

func NewReminderService(tasks *repository.TaskRepository, notifier notify.Notifier) *ReminderService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &ReminderService{tasks: tasks, notifier: notifier}
}

// NotifyDue sends a reminder for every unfinished task due on the given
// day. The assignee is notified when one is set, the owner otherwise.
// Delivery failures are logged per task and never abort the run.
func (s *ReminderService) NotifyDue(ctx context.Context, now time.Time) error {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	tasks, err := s.tasks.ListDueBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}

	for i := range tasks {
		task := &tasks[i]
		recipient := task.AssignedTo
		if recipient == nil {
			recipient = task.Owner
		}
		if recipient == nil {
			continue
		}
		if err := s.notifier.TaskDue(ctx, task, recipient); err != nil {
			log.Printf("reminder: task %d: %v", task.ID, err)
		}
	}
	return nil
}
