package model

import "time"

// Status tracks where a task is in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single unit of work, created by its owner and
// optionally delegated to an assignee.
type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       Status     `gorm:"default:pending;index" json:"status"`
	Priority     Priority   `gorm:"default:medium;index" json:"priority"`
	DueDate      *time.Time `gorm:"index" json:"dueDate,omitempty"`
	UserID       uint       `gorm:"index" json:"userId"`
	AssignedToID *uint      `gorm:"index" json:"assignedToId,omitempty"`
	Owner        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AssignedTo   *User      `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
	Documents    []Document `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"documents"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsOwner reports whether the given user created this task.
func (t *Task) IsOwner(u *User) bool {
	return u != nil && t.UserID == u.ID
}

// IsAssignee reports whether the task is delegated to the given user.
func (t *Task) IsAssignee(u *User) bool {
	return u != nil && t.AssignedToID != nil && *t.AssignedToID == u.ID
}
