package task

import (
	"time"

	activitydomain "github.com/example/task-workflow/domain/activity"
	domain "github.com/example/task-workflow/domain/task"
)

// TaskView is a task joined with the display data of its assignee.
type TaskView struct {
	ID             string                  `json:"id"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	Status         domain.Status           `json:"status"`
	Priority       domain.Priority         `json:"priority"`
	AssignedUserID *string                 `json:"assignedUserId"`
	AssignedUser   *activitydomain.UserRef `json:"assignedUser"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

func newTaskView(t domain.Task, names map[string]string) TaskView {
	v := TaskView{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		AssignedUserID: t.AssignedUserID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if id := t.Assignee(); id != "" {
		name, ok := names[id]
		if !ok || name == "" {
			name = activitydomain.UnknownUser
		}
		v.AssignedUser = &activitydomain.UserRef{ID: id, Name: name}
	}
	return v
}

// CreateTaskRequest carries the fields of a new task. SmartAssign ignores
// AssignedUserID.
type CreateTaskRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Status         string `json:"status,omitempty"`
	Priority       string `json:"priority,omitempty"`
	AssignedUserID string `json:"assigned_user_id,omitempty"`
}

// Fields converts the request to domain fields.
func (r CreateTaskRequest) Fields() domain.Fields {
	return domain.Fields{
		Title:          r.Title,
		Description:    r.Description,
		Status:         domain.Status(r.Status),
		Priority:       domain.Priority(r.Priority),
		AssignedUserID: r.AssignedUserID,
	}
}

// TaskResponse carries one task.
type TaskResponse struct {
	Task domain.Task `json:"task"`
}

// GetTaskRequest names a task.
type GetTaskRequest struct {
	ID string `json:"id"`
}

// ListTasksRequest filters the task list. Empty fields match everything.
type ListTasksRequest struct {
	Status         string `json:"status,omitempty"`
	Priority       string `json:"priority,omitempty"`
	AssignedUserID string `json:"assigned_user_id,omitempty"`
}

// Filter converts the request to a domain filter.
func (r ListTasksRequest) Filter() domain.Filter {
	return domain.Filter{
		Status:         domain.Status(r.Status),
		Priority:       domain.Priority(r.Priority),
		AssignedUserID: r.AssignedUserID,
	}
}

// ListTasksResponse lists tasks in insertion order.
type ListTasksResponse struct {
	Tasks []TaskView `json:"tasks"`
}

// UpdateStatusRequest moves a task to a new status.
type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// DeleteTaskRequest names the task to delete.
type DeleteTaskRequest struct {
	ID string `json:"id"`
}

// DeleteTaskResponse acknowledges a deletion.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}
