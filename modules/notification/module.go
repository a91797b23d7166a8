// Package notification keeps a bounded in-memory feed of task events.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/task-workflow/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Notification is one entry of the feed.
type Notification struct {
	TaskID    string    `json:"taskId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ListRequest asks for the newest notifications; Limit <= 0 means all.
type ListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ListResponse lists notifications newest first.
type ListResponse struct {
	Notifications []Notification `json:"notifications"`
}

// NotificationModule consumes task events and remembers the latest ones.
type NotificationModule struct {
	capacity      int
	notifications []Notification
	mu            sync.RWMutex
	now           func() time.Time
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)

// NewModule creates the module. A capacity <= 0 falls back to 100.
func NewModule(capacity int) *NotificationModule {
	if capacity <= 0 {
		capacity = 100
	}
	return &NotificationModule{
		capacity:      capacity,
		notifications: make([]Notification, 0, capacity),
		now:           time.Now,
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskStatusChangedV1, m.handleTaskStatusChanged, m); err != nil {
		return fmt.Errorf("failed to register TaskStatusChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: TaskCreated, TaskStatusChanged, TaskDeleted")
	return nil
}

func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-notifications", json.Unmarshal, json.Marshal, m.listNotifications,
	); err != nil {
		return fmt.Errorf("failed to register list-notifications service: %w", err)
	}
	log.Printf("[notification] Registered services: list-notifications")
	return nil
}

func (m *NotificationModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("New task '%s' created", event.Title)
	if event.SmartAssigned {
		msg = fmt.Sprintf("Task '%s' smart-assigned to user %s", event.Title, event.AssignedUserID)
	} else if event.AssignedUserID != "" {
		msg = fmt.Sprintf("New task '%s' created for user %s", event.Title, event.AssignedUserID)
	}
	m.push(Notification{TaskID: event.TaskID, Type: "task_created", Message: msg, UserID: event.AssignedUserID})
	return nil
}

func (m *NotificationModule) handleTaskStatusChanged(_ context.Context, event events.TaskStatusChangedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("Task '%s' moved from %s to %s", event.Title, event.OldStatus, event.NewStatus)
	m.push(Notification{TaskID: event.TaskID, Type: "task_status_changed", Message: msg, UserID: event.AssignedUserID})
	return nil
}

func (m *NotificationModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("Task '%s' deleted", event.Title)
	m.push(Notification{TaskID: event.TaskID, Type: "task_deleted", Message: msg, UserID: event.AssignedUserID})
	return nil
}

// push appends n, dropping the oldest entry once the feed is full.
func (m *NotificationModule) push(n Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n.Timestamp = m.now()
	if len(m.notifications) == m.capacity {
		copy(m.notifications, m.notifications[1:])
		m.notifications = m.notifications[:len(m.notifications)-1]
	}
	m.notifications = append(m.notifications, n)
	log.Printf("[notification] %s: %s", n.Type, n.Message)
}

// Recent returns up to limit notifications, newest first.
func (m *NotificationModule) Recent(limit int) []Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.notifications)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]Notification, 0, n)
	for i := len(m.notifications) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, m.notifications[i])
	}
	return result
}

func (m *NotificationModule) listNotifications(_ context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	return ListResponse{Notifications: m.Recent(req.Limit)}, nil
}

func (m *NotificationModule) Start(_ context.Context) error {
	log.Printf("[notification] Module started - listening for task events (capacity: %d)", m.capacity)
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}
