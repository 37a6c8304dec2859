package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

// TaskRepository handles CRUD for tasks and their attachment records.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// publicUser limits preloaded owner/assignee rows to the public
// projection. The password hash never leaves the store this way.
func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID loads a task with its documents and the public projection of
// owner and assignee.
func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Owner", publicUser).
		Preload("AssignedTo", publicUser).
		Preload("Documents").
		First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("task %d", id)
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// List executes a translated query scoped by the caller's role. The
// ownership clause is applied before any client-supplied filter and is
// combined with them by AND, so no parameter can widen visibility.
func (r *TaskRepository) List(ctx context.Context, caller *model.User, q *TaskQuery) ([]model.Task, error) {
	db := r.db.WithContext(ctx).Model(&model.Task{})

	if !caller.IsAdmin() {
		db = db.Where("user_id = ? OR assigned_to_id = ?", caller.ID, caller.ID)
	}

	for _, f := range q.Filters {
		db = db.Where(f.Expr, f.Args...)
	}

	// Non-nil so an empty page serializes as a JSON array.
	tasks := make([]model.Task, 0)
	err := db.Order(q.OrderBy()).
		Offset(q.Offset()).
		Limit(q.Limit).
		Preload("Owner", publicUser).
		Preload("AssignedTo", publicUser).
		Preload("Documents").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies the given column changes to the task record.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Delete removes the task and its document records.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.Document{}).Error; err != nil {
			return fmt.Errorf("delete task documents: %w", err)
		}
		res := tx.Delete(&model.Task{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFoundf("task %d", id)
		}
		return nil
	})
}

// ReplaceDocuments swaps the task's attachment records for the new set.
func (r *TaskRepository) ReplaceDocuments(ctx context.Context, taskID uint, docs []model.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.Document{}).Error; err != nil {
			return fmt.Errorf("clear documents: %w", err)
		}
		for i := range docs {
			docs[i].TaskID = taskID
		}
		if len(docs) == 0 {
			return nil
		}
		if err := tx.Create(&docs).Error; err != nil {
			return fmt.Errorf("attach documents: %w", err)
		}
		return nil
	})
}

// ListDueBetween returns unfinished tasks whose due date falls in the
// given window, with owner and assignee loaded for notification.
func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date >= ? AND due_date < ? AND status <> ?", from, to, model.StatusCompleted).
		Preload("Owner").
		Preload("AssignedTo").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	return tasks, nil
}

// ReferencedFilenames returns the stored filenames of every attachment
// record. The upload sweeper treats anything else in the uploads dir as
// an orphan.
func (r *TaskRepository) ReferencedFilenames(ctx context.Context) (map[string]bool, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&model.Document{}).Pluck("filename", &names).Error; err != nil {
		return nil, fmt.Errorf("list document filenames: %w", err)
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set, nil
}
