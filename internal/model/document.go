package model

import "time"

// Document is a file attached to a task. Records are immutable once
// stored: replacing an attachment means deleting the old file and
// writing a new one under a fresh stored name.
type Document struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"index" json:"taskId"`
	Filename     string    `gorm:"uniqueIndex" json:"filename"`
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"contentType"`
	Path         string    `json:"-"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
}
