package activity

import (
	"context"
	"errors"
	"testing"

	domain "github.com/example/task-workflow/domain/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNameResolver implements NameResolver for testing.
type mockNameResolver struct {
	resolveFunc func(ctx context.Context, ids []string) (map[string]string, error)
	calls       int
}

func (m *mockNameResolver) ResolveUsers(ctx context.Context, ids []string) (map[string]string, error) {
	m.calls++
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, ids)
	}
	return map[string]string{}, nil
}

func TestService_ListRecent_ResolvesUsers(t *testing.T) {
	ctx := context.Background()
	resolver := &mockNameResolver{
		resolveFunc: func(_ context.Context, ids []string) (map[string]string, error) {
			names := map[string]string{}
			for _, id := range ids {
				if id == "alice" {
					names[id] = "Alice"
				} else {
					names[id] = domain.UnknownUser
				}
			}
			return names, nil
		},
	}
	svc := NewService(setupLedger(t), resolver)

	_, err := svc.Append(ctx, `Created task "A"`, "alice")
	require.NoError(t, err)
	_, err = svc.Append(ctx, `Created task "B"`, "")
	require.NoError(t, err)
	_, err = svc.Append(ctx, `Deleted task "C"`, "removed-user")
	require.NoError(t, err)

	views, err := svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, `Deleted task "C"`, views[0].Action)
	require.NotNil(t, views[0].User)
	assert.Equal(t, domain.UnknownUser, views[0].User.Name)

	assert.Nil(t, views[1].User)
	assert.Nil(t, views[1].UserID)

	require.NotNil(t, views[2].User)
	assert.Equal(t, "Alice", views[2].User.Name)
	assert.Equal(t, 1, resolver.calls)
}

func TestService_ListRecent_MissingNameFallsBackToUnknown(t *testing.T) {
	ctx := context.Background()
	svc := NewService(setupLedger(t), &mockNameResolver{})

	_, err := svc.Append(ctx, "something", "ghost")
	require.NoError(t, err)

	views, err := svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.UnknownUser, views[0].User.Name)
}

func TestService_ListRecent_NoUsersSkipsResolver(t *testing.T) {
	ctx := context.Background()
	resolver := &mockNameResolver{}
	svc := NewService(setupLedger(t), resolver)

	_, err := svc.Append(ctx, "unassigned", "")
	require.NoError(t, err)

	_, err = svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, resolver.calls)
}

func TestService_ListRecent_ResolverError(t *testing.T) {
	ctx := context.Background()
	svc := NewService(setupLedger(t), &mockNameResolver{
		resolveFunc: func(context.Context, []string) (map[string]string, error) {
			return nil, errors.New("directory down")
		},
	})

	_, err := svc.Append(ctx, "x", "alice")
	require.NoError(t, err)

	_, err = svc.ListRecent(ctx, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory down")
}
