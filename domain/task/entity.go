// Package task provides the task entity, its workflow enums and the error taxonomy
// shared by the task store, the assignment selector and the workflow engine.
package task

import (
	"strings"
	"time"
)

// Status is the workflow state of a task.
type Status string

const (
	// StatusTodo is the usual initial state.
	StatusTodo Status = "todo"
	// StatusInProgress marks a task somebody is working on.
	StatusInProgress Status = "inprogress"
	// StatusDone marks a finished task. Done tasks may be reopened.
	StatusDone Status = "done"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// IsValid reports whether s is one of the workflow states.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority is the caller supplied importance of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every valid priority.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work owned by the task store.
//
// AssignedUserID is a soft reference: it must name an existing user when
// written, but is left untouched if that user is later removed.
type Task struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Seq            int64     `gorm:"not null;index" json:"-"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `json:"description"`
	Status         Status    `gorm:"size:16;not null;index" json:"status"`
	Priority       Priority  `gorm:"size:16;not null" json:"priority"`
	AssignedUserID *string   `gorm:"size:36;index" json:"assignedUserId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM.
func (Task) TableName() string {
	return "tasks"
}

// Assignee returns the assigned user id, or "" when the task is unassigned.
func (t *Task) Assignee() string {
	if t.AssignedUserID == nil {
		return ""
	}
	return *t.AssignedUserID
}

// Fields are the caller supplied attributes of a new task.
type Fields struct {
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	AssignedUserID string
}

// Normalize trims the title and fills an omitted status (todo) and
// priority (Medium). Values that are present are kept as given.
func (f Fields) Normalize() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.AssignedUserID = strings.TrimSpace(f.AssignedUserID)
	if f.Status == "" {
		f.Status = StatusTodo
	}
	if f.Priority == "" {
		f.Priority = PriorityMedium
	}
	return f
}

// Validate checks the title and both enums.
func (f Fields) Validate() error {
	if f.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if !f.Status.IsValid() {
		return NewValidationError("status", "status must be one of todo, inprogress, done")
	}
	if !f.Priority.IsValid() {
		return NewValidationError("priority", "priority must be one of Low, Medium, High")
	}
	return nil
}

// Filter narrows a task listing. Zero values match everything.
type Filter struct {
	Status         Status
	Priority       Priority
	AssignedUserID string
}

// Validate rejects out-of-enum filter values.
func (f Filter) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return NewValidationError("status", "unknown status filter")
	}
	if f.Priority != "" && !f.Priority.IsValid() {
		return NewValidationError("priority", "unknown priority filter")
	}
	return nil
}
