package activity

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-workflow/domain/activity"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// LedgerPort is how other modules reach the activity ledger.
type LedgerPort interface {
	Append(ctx context.Context, action, userID string) (*domain.Entry, error)
	ListRecent(ctx context.Context, limit int) ([]domain.View, error)
}

type ledgerAdapter struct {
	container mono.ServiceContainer
}

// NewLedgerAdapter creates a LedgerPort backed by the activity module's services.
func NewLedgerAdapter(container mono.ServiceContainer) LedgerPort {
	if container == nil {
		panic("ledger adapter requires non-nil ServiceContainer")
	}
	return &ledgerAdapter{container: container}
}

// Append records one entry via the append-activity service.
func (a *ledgerAdapter) Append(ctx context.Context, action, userID string) (*domain.Entry, error) {
	req := AppendRequest{Action: action, UserID: userID}
	var resp AppendResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "append-activity", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("append-activity service call failed: %w", err)
	}
	return &resp.Entry, nil
}

// ListRecent lists entries via the list-activity service.
func (a *ledgerAdapter) ListRecent(ctx context.Context, limit int) ([]domain.View, error) {
	req := ListRequest{Limit: limit}
	var resp ListResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-activity", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-activity service call failed: %w", err)
	}
	return resp.Entries, nil
}
