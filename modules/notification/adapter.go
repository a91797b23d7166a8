package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationPort reads the notification feed.
type NotificationPort interface {
	ListNotifications(ctx context.Context, limit int) ([]Notification, error)
}

type notificationAdapter struct {
	container mono.ServiceContainer
}

// NewNotificationAdapter creates a NotificationPort backed by the module's services.
func NewNotificationAdapter(container mono.ServiceContainer) NotificationPort {
	if container == nil {
		panic("notification adapter requires non-nil ServiceContainer")
	}
	return &notificationAdapter{container: container}
}

func (a *notificationAdapter) ListNotifications(ctx context.Context, limit int) ([]Notification, error) {
	req := ListRequest{Limit: limit}
	var resp ListResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-notifications", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-notifications service call failed: %w", err)
	}
	if resp.Notifications == nil {
		resp.Notifications = []Notification{}
	}
	return resp.Notifications, nil
}
