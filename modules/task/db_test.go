package task

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	domain "github.com/example/task-workflow/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"tasks.db", "tasks.db?_txlock=immediate&_busy_timeout=5000"},
		{":memory:", ":memory:?_txlock=immediate&_busy_timeout=5000"},
		{"file:tasks.db?cache=shared", "file:tasks.db?cache=shared&_txlock=immediate&_busy_timeout=5000"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.path))
		})
	}
}

func TestOpenDatabase_ConcurrentStatusUpdates(t *testing.T) {
	ctx := context.Background()

	db, err := openDatabase(filepath.Join(t.TempDir(), "tasks.db"), false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store := NewStore(db)
	require.NoError(t, store.Migrate(ctx))

	var ids []string
	for _, title := range []string{"one", "two"} {
		created, err := store.Create(ctx, domain.Fields{Title: title})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(id string, status domain.Status) {
			defer wg.Done()
			_, _, err := store.UpdateStatus(ctx, id, status)
			assert.NoError(t, err)
		}(ids[i%len(ids)], domain.Statuses[i%len(domain.Statuses)])
	}
	wg.Wait()

	for _, id := range ids {
		_, err := store.Get(ctx, id)
		assert.NoError(t, err)
	}
}
