package activity

import (
	"context"
	"fmt"

	domain "github.com/example/task-workflow/domain/activity"
)

// NameResolver maps user ids to display names.
type NameResolver interface {
	ResolveUsers(ctx context.Context, userIDs []string) (map[string]string, error)
}

// Service exposes the ledger joined with user display data.
type Service struct {
	ledger *Ledger
	names  NameResolver
}

// NewService creates a new Service.
func NewService(ledger *Ledger, names NameResolver) *Service {
	return &Service{ledger: ledger, names: names}
}

// Append records one entry. An empty userID records no user.
func (s *Service) Append(ctx context.Context, action, userID string) (*domain.Entry, error) {
	var ref *string
	if userID != "" {
		ref = &userID
	}
	return s.ledger.Append(ctx, action, ref)
}

// ListRecent returns views newest first. Users missing from the directory
// display as domain.UnknownUser.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]domain.View, error) {
	entries, err := s.ledger.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	var ids []string
	for i := range entries {
		if entries[i].UserID != nil {
			ids = append(ids, *entries[i].UserID)
		}
	}

	names := map[string]string{}
	if len(ids) > 0 && s.names != nil {
		names, err = s.names.ResolveUsers(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve users: %w", err)
		}
	}

	views := make([]domain.View, 0, len(entries))
	for i := range entries {
		e := entries[i]
		view := domain.View{
			ID:        e.ID,
			Action:    e.Action,
			UserID:    e.UserID,
			Timestamp: e.Timestamp,
		}
		if e.UserID != nil {
			name, ok := names[*e.UserID]
			if !ok {
				name = domain.UnknownUser
			}
			view.User = &domain.UserRef{ID: *e.UserID, Name: name}
		}
		views = append(views, view)
	}
	return views, nil
}
