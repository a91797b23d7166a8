package activity

import (
	domain "github.com/example/task-workflow/domain/activity"
)

// AppendRequest asks the ledger to record one entry.
type AppendRequest struct {
	Action string `json:"action"`
	UserID string `json:"user_id,omitempty"`
}

// AppendResponse carries the stored entry.
type AppendResponse struct {
	Entry domain.Entry `json:"entry"`
}

// ListRequest asks for the newest entries; Limit <= 0 means all.
type ListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ListResponse lists entries newest first.
type ListResponse struct {
	Entries []domain.View `json:"entries"`
}
