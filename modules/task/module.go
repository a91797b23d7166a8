package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/task-workflow/domain/task"
	"github.com/example/task-workflow/events"
	"github.com/example/task-workflow/modules/activity"
	"github.com/example/task-workflow/modules/cache"
	"github.com/example/task-workflow/modules/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// TaskModule owns the task store and runs the workflow engine.
type TaskModule struct {
	dbPath      string
	debug       bool
	db          *gorm.DB
	engine      *Engine
	userPort    user.UserPort
	ledgerPort  activity.LedgerPort
	cacheModule *cache.Module
	eventBus    mono.EventBus
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates the task module storing tasks in dbPath.
func NewModule(dbPath string, debug bool) *TaskModule {
	return &TaskModule{dbPath: dbPath, debug: debug}
}

// SetCacheModule makes load counting read through Redis.
func (m *TaskModule) SetCacheModule(c *cache.Module) {
	m.cacheModule = c
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"user", "activity"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "user":
		m.userPort = user.NewUserAdapter(container)
	case "activity":
		m.ledgerPort = activity.NewLedgerAdapter(container)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskStatusChangedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) Start(ctx context.Context) error {
	if m.userPort == nil {
		return fmt.Errorf("userPort dependency not set")
	}
	if m.ledgerPort == nil {
		return fmt.Errorf("ledgerPort dependency not set")
	}
	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}

	db, err := openDatabase(m.dbPath, m.debug)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	store := NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	loads := NewStoreLoadCounter(store)
	if m.cacheModule != nil {
		if err := m.cacheModule.Connect(ctx); err != nil {
			return err
		}
		loads = NewCachedLoadCounter(store, m.cacheModule.Cache())
	}

	m.engine = NewEngine(store, m.userPort, m.ledgerPort, loads, &busNotifier{bus: m.eventBus})

	log.Printf("[task] Module started (database: %s, load cache: %v, depends on: user, activity)", m.dbPath, m.cacheModule != nil)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"database": m.dbPath, "load_cache": m.cacheModule != nil},
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "smart-assign-task", json.Unmarshal, json.Marshal, m.smartAssignTask,
	); err != nil {
		return fmt.Errorf("failed to register smart-assign-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task-status", json.Unmarshal, json.Marshal, m.updateTaskStatus,
	); err != nil {
		return fmt.Errorf("failed to register update-task-status service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	log.Printf("[task] Registered services: create-task, smart-assign-task, get-task, list-tasks, update-task-status, delete-task")
	return nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.engine.CreateTask(ctx, req.Fields())
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) smartAssignTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.engine.SmartAssign(ctx, req.Fields())
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.engine.GetTask(ctx, req.ID)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	views, err := m.engine.ListTasks(ctx, req.Filter())
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: views}, nil
}

func (m *TaskModule) updateTaskStatus(ctx context.Context, req UpdateStatusRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.engine.UpdateTaskStatus(ctx, req.ID, domain.Status(req.Status))
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.engine.DeleteTask(ctx, req.ID); err != nil {
		return DeleteTaskResponse{}, err
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

// busNotifier publishes engine notifications on the event bus.
type busNotifier struct {
	bus mono.EventBus
}

func (n *busNotifier) TaskCreated(_ context.Context, evt events.TaskCreatedEvent) {
	if n.bus == nil {
		return
	}
	if err := events.TaskCreatedV1.Publish(n.bus, evt, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskCreated event: %v", err)
	}
}

func (n *busNotifier) TaskStatusChanged(_ context.Context, evt events.TaskStatusChangedEvent) {
	if n.bus == nil {
		return
	}
	if err := events.TaskStatusChangedV1.Publish(n.bus, evt, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskStatusChanged event: %v", err)
	}
}

func (n *busNotifier) TaskDeleted(_ context.Context, evt events.TaskDeletedEvent) {
	if n.bus == nil {
		return
	}
	if err := events.TaskDeletedV1.Publish(n.bus, evt, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskDeleted event: %v", err)
	}
}
