package task

import (
	"context"
	"encoding/json"

	domain "github.com/example/task-workflow/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is how other modules drive the task workflow. Returned errors
// match the domain/task sentinels under errors.Is.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error)
	SmartAssign(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) ([]TaskView, error)
	UpdateTaskStatus(ctx context.Context, id, status string) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a TaskPort backed by the task module's services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) call(ctx context.Context, service string, req, resp any) error {
	err := helper.CallRequestReplyService[any, any](ctx, a.container, service, json.Marshal, json.Unmarshal, req, &resp)
	return domain.DecodeError(err)
}

func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := a.call(ctx, "create-task", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *taskAdapter) SmartAssign(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := a.call(ctx, "smart-assign-task", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *taskAdapter) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var resp TaskResponse
	if err := a.call(ctx, "get-task", &GetTaskRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *taskAdapter) ListTasks(ctx context.Context, req *ListTasksRequest) ([]TaskView, error) {
	var resp ListTasksResponse
	if err := a.call(ctx, "list-tasks", req, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []TaskView{}
	}
	return resp.Tasks, nil
}

func (a *taskAdapter) UpdateTaskStatus(ctx context.Context, id, status string) (*domain.Task, error) {
	var resp TaskResponse
	if err := a.call(ctx, "update-task-status", &UpdateStatusRequest{ID: id, Status: status}, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *taskAdapter) DeleteTask(ctx context.Context, id string) error {
	var resp DeleteTaskResponse
	return a.call(ctx, "delete-task", &DeleteTaskRequest{ID: id}, &resp)
}
