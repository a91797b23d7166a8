package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted after a task and its ledger entry are written.
type TaskCreatedEvent struct {
	TaskID         string    `json:"task_id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	AssignedUserID string    `json:"assigned_user_id,omitempty"`
	SmartAssigned  bool      `json:"smart_assigned"`
	CreatedAt      time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskStatusChangedEvent is emitted after a status update is recorded.
type TaskStatusChangedEvent struct {
	TaskID         string    `json:"task_id"`
	Title          string    `json:"title"`
	OldStatus      string    `json:"old_status"`
	NewStatus      string    `json:"new_status"`
	AssignedUserID string    `json:"assigned_user_id,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}

// TaskStatusChangedV1 is the typed event definition for status changes.
// Subject: events.task.v1.task-status-changed
var TaskStatusChangedV1 = helper.EventDefinition[TaskStatusChangedEvent](
	"task", "TaskStatusChanged", "v1",
)

// TaskDeletedEvent is emitted after a task row is removed.
type TaskDeletedEvent struct {
	TaskID         string    `json:"task_id"`
	Title          string    `json:"title"`
	AssignedUserID string    `json:"assigned_user_id,omitempty"`
	DeletedAt      time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
