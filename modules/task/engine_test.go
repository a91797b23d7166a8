package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	activitydomain "github.com/example/task-workflow/domain/activity"
	domain "github.com/example/task-workflow/domain/task"
	userdomain "github.com/example/task-workflow/domain/user"
	"github.com/example/task-workflow/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory implements Directory over a fixed user list.
type fakeDirectory struct {
	users   []userdomain.Profile
	listErr error
}

func newFakeDirectory(names ...string) *fakeDirectory {
	d := &fakeDirectory{}
	for _, n := range names {
		d.users = append(d.users, userdomain.Profile{ID: n, Name: "User " + n})
	}
	return d
}

func (d *fakeDirectory) ListUsers(context.Context) ([]userdomain.Profile, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.users, nil
}

func (d *fakeDirectory) UserExists(_ context.Context, id string) (bool, error) {
	for _, u := range d.users {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeDirectory) ResolveUsers(_ context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		names[id] = activitydomain.UnknownUser
		for _, u := range d.users {
			if u.ID == id {
				names[id] = u.Name
			}
		}
	}
	return names, nil
}

type ledgerCall struct {
	Action string
	UserID string
}

// fakeLedger records appended entries. failWith makes every Append fail.
type fakeLedger struct {
	mu       sync.Mutex
	entries  []ledgerCall
	failWith error
	onAppend func(action string)
}

func (l *fakeLedger) Append(_ context.Context, action, userID string) (*activitydomain.Entry, error) {
	if l.onAppend != nil {
		l.onAppend(action)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.entries = append(l.entries, ledgerCall{Action: action, UserID: userID})
	return &activitydomain.Entry{ID: uint64(len(l.entries)), Action: action}, nil
}

func (l *fakeLedger) calls() []ledgerCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ledgerCall(nil), l.entries...)
}

// recordingNotifier captures published events.
type recordingNotifier struct {
	mu      sync.Mutex
	created []events.TaskCreatedEvent
	changed []events.TaskStatusChangedEvent
	deleted []events.TaskDeletedEvent
}

func (n *recordingNotifier) TaskCreated(_ context.Context, evt events.TaskCreatedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, evt)
}

func (n *recordingNotifier) TaskStatusChanged(_ context.Context, evt events.TaskStatusChangedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, evt)
}

func (n *recordingNotifier) TaskDeleted(_ context.Context, evt events.TaskDeletedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, evt)
}

type engineFixture struct {
	engine   *Engine
	store    *Store
	dir      *fakeDirectory
	ledger   *fakeLedger
	notifier *recordingNotifier
}

func newEngineFixture(t *testing.T, users ...string) *engineFixture {
	t.Helper()

	f := &engineFixture{
		store:    setupStore(t),
		dir:      newFakeDirectory(users...),
		ledger:   &fakeLedger{},
		notifier: &recordingNotifier{},
	}
	f.engine = NewEngine(f.store, f.dir, f.ledger, nil, f.notifier)
	return f
}

func (f *engineFixture) seedAssigned(t *testing.T, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.store.Create(context.Background(), domain.Fields{
			Title:          fmt.Sprintf("seed %s %d", userID, i),
			AssignedUserID: userID,
		})
		require.NoError(t, err)
	}
}

func TestEngine_CreateTask(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "alice")

	created, err := f.engine.CreateTask(ctx, domain.Fields{Title: "Write report", AssignedUserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, created.Status)
	assert.Equal(t, domain.PriorityMedium, created.Priority)

	calls := f.ledger.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, `Created task "Write report"`, calls[0].Action)
	assert.Equal(t, "alice", calls[0].UserID)

	require.Len(t, f.notifier.created, 1)
	assert.False(t, f.notifier.created[0].SmartAssigned)
	assert.Equal(t, created.ID, f.notifier.created[0].TaskID)
}

func TestEngine_CreateTask_Unassigned(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.CreateTask(context.Background(), domain.Fields{Title: "loose end"})
	require.NoError(t, err)

	calls := f.ledger.calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].UserID)
}

func TestEngine_CreateTask_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "alice")

	tests := []struct {
		name      string
		fields    domain.Fields
		wantField string
	}{
		{"empty title", domain.Fields{}, "title"},
		{"unknown status", domain.Fields{Title: "x", Status: "blocked"}, "status"},
		{"unknown priority", domain.Fields{Title: "x", Priority: "Critical"}, "priority"},
		{"unknown assignee", domain.Fields{Title: "x", AssignedUserID: "ghost"}, "assignedUserId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateTask(ctx, tt.fields)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}

	all, err := f.store.List(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.ledger.calls())
}

func TestEngine_CreateTask_LedgerFailureIsPartiallyApplied(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.ledger.failWith = errors.New("ledger disk full")

	created, err := f.engine.CreateTask(ctx, domain.Fields{Title: "half done"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.True(t, domain.IsPartiallyApplied(err))
	require.NotNil(t, created)

	// The row is committed even though the entry is missing.
	got, err := f.store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "half done", got.Title)
	assert.Empty(t, f.notifier.created)
}

func TestEngine_UpdateTaskStatus_RecordsEveryCall(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "bob")

	created, err := f.engine.CreateTask(ctx, domain.Fields{Title: "Cycle", AssignedUserID: "bob"})
	require.NoError(t, err)

	_, err = f.engine.UpdateTaskStatus(ctx, created.ID, domain.StatusDone)
	require.NoError(t, err)
	reopened, err := f.engine.UpdateTaskStatus(ctx, created.ID, domain.StatusTodo)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, reopened.Status)

	calls := f.ledger.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, `Updated task "Cycle" → status: done (was todo)`, calls[1].Action)
	assert.Equal(t, `Updated task "Cycle" → status: todo (was done)`, calls[2].Action)
	assert.Equal(t, "bob", calls[2].UserID)

	require.Len(t, f.notifier.changed, 2)
	assert.Equal(t, "done", f.notifier.changed[1].OldStatus)
	assert.Equal(t, "todo", f.notifier.changed[1].NewStatus)
}

func TestEngine_UpdateTaskStatus_SameStatusIsRecorded(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)

	created, err := f.engine.CreateTask(ctx, domain.Fields{Title: "Idle"})
	require.NoError(t, err)

	_, err = f.engine.UpdateTaskStatus(ctx, created.ID, domain.StatusTodo)
	require.NoError(t, err)
	assert.Len(t, f.ledger.calls(), 2)
}

func TestEngine_UpdateTaskStatus_Errors(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)

	_, err := f.engine.UpdateTaskStatus(ctx, "missing", domain.StatusDone)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	created, err := f.engine.CreateTask(ctx, domain.Fields{Title: "x"})
	require.NoError(t, err)
	_, err = f.engine.UpdateTaskStatus(ctx, created.ID, "archived")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Len(t, f.ledger.calls(), 1)

	f.ledger.failWith = errors.New("ledger offline")
	updated, err := f.engine.UpdateTaskStatus(ctx, created.ID, domain.StatusDone)
	assert.True(t, domain.IsPartiallyApplied(err))
	require.NotNil(t, updated)
	got, err := f.store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
}

func TestEngine_SmartAssign_PicksLeastLoaded(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A", "B")
	f.seedAssigned(t, "A", 2)

	assigned, err := f.engine.SmartAssign(ctx, domain.Fields{Title: "Review PR", AssignedUserID: "A"})
	require.NoError(t, err)
	assert.Equal(t, "B", assigned.Assignee())

	calls := f.ledger.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, `Smart assigned "Review PR" to User ID B`, calls[0].Action)
	assert.Equal(t, "B", calls[0].UserID)

	require.Len(t, f.notifier.created, 1)
	assert.True(t, f.notifier.created[0].SmartAssigned)
}

func TestEngine_SmartAssign_TieGoesToDirectoryOrder(t *testing.T) {
	f := newEngineFixture(t, "first", "second", "third")
	f.seedAssigned(t, "first", 1)

	assigned, err := f.engine.SmartAssign(context.Background(), domain.Fields{Title: "tie"})
	require.NoError(t, err)
	assert.Equal(t, "second", assigned.Assignee())
}

func TestEngine_SmartAssign_CountsDoneTasks(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A", "B")
	f.seedAssigned(t, "A", 1)
	_, err := f.store.Create(ctx, domain.Fields{Title: "finished", Status: domain.StatusDone, AssignedUserID: "B"})
	require.NoError(t, err)
	_, err = f.store.Create(ctx, domain.Fields{Title: "finished 2", Status: domain.StatusDone, AssignedUserID: "B"})
	require.NoError(t, err)

	assigned, err := f.engine.SmartAssign(ctx, domain.Fields{Title: "next"})
	require.NoError(t, err)
	assert.Equal(t, "A", assigned.Assignee())
}

func TestEngine_SmartAssign_NoUsers(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)

	_, err := f.engine.SmartAssign(ctx, domain.Fields{Title: "orphan"})
	assert.ErrorIs(t, err, domain.ErrNoEligibleAssignee)

	all, err := f.store.List(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.ledger.calls())
}

func TestEngine_SmartAssign_DirectoryFailure(t *testing.T) {
	f := newEngineFixture(t, "A")
	f.dir.listErr = errors.New("directory unreachable")

	_, err := f.engine.SmartAssign(context.Background(), domain.Fields{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Empty(t, f.ledger.calls())
}

func TestEngine_SmartAssign_ConcurrentCallsNeverCorrupt(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A", "B", "C")

	const n = 30
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.engine.SmartAssign(ctx, domain.Fields{Title: fmt.Sprintf("job %d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := f.store.List(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, n)
	assert.Len(t, f.ledger.calls(), n)

	counts, err := f.store.CountByAssignee(ctx, []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, int64(n), counts["A"]+counts["B"]+counts["C"])
}

func TestEngine_DeleteTask_RecordsBeforeRemoving(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "carol")

	created, err := f.engine.CreateTask(ctx, domain.Fields{Title: "Obsolete", AssignedUserID: "carol"})
	require.NoError(t, err)

	var presentAtAppend bool
	f.ledger.onAppend = func(action string) {
		if action == `Deleted task "Obsolete"` {
			_, err := f.store.Get(ctx, created.ID)
			presentAtAppend = err == nil
		}
	}

	require.NoError(t, f.engine.DeleteTask(ctx, created.ID))
	assert.True(t, presentAtAppend, "ledger entry must be written while the task still exists")

	_, err = f.store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	calls := f.ledger.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "carol", calls[1].UserID)
	require.Len(t, f.notifier.deleted, 1)
	assert.Equal(t, created.ID, f.notifier.deleted[0].TaskID)
}

func TestEngine_DeleteTask_Missing(t *testing.T) {
	f := newEngineFixture(t)

	err := f.engine.DeleteTask(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Empty(t, f.ledger.calls())
}

func TestEngine_DeleteTask_LedgerFailureKeepsTask(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)

	created, err := f.engine.CreateTask(ctx, domain.Fields{Title: "Keep me"})
	require.NoError(t, err)

	f.ledger.failWith = errors.New("ledger offline")
	err = f.engine.DeleteTask(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.False(t, domain.IsPartiallyApplied(err))

	_, err = f.store.Get(ctx, created.ID)
	assert.NoError(t, err)
	assert.Empty(t, f.notifier.deleted)
}

func TestEngine_ListTasks_ResolvesAssignees(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "alice")

	_, err := f.engine.CreateTask(ctx, domain.Fields{Title: "mine", AssignedUserID: "alice"})
	require.NoError(t, err)
	_, err = f.engine.CreateTask(ctx, domain.Fields{Title: "nobody's"})
	require.NoError(t, err)
	// A reference to a user that has since been removed.
	_, err = f.store.Create(ctx, domain.Fields{Title: "stale", AssignedUserID: "removed"})
	require.NoError(t, err)

	views, err := f.engine.ListTasks(ctx, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, views, 3)

	require.NotNil(t, views[0].AssignedUser)
	assert.Equal(t, "User alice", views[0].AssignedUser.Name)
	assert.Nil(t, views[1].AssignedUser)
	require.NotNil(t, views[2].AssignedUser)
	assert.Equal(t, activitydomain.UnknownUser, views[2].AssignedUser.Name)
}

func TestEngine_MutationCountMatchesLedger(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t, "A", "B")

	var mutations int
	a, err := f.engine.CreateTask(ctx, domain.Fields{Title: "a"})
	require.NoError(t, err)
	mutations++
	b, err := f.engine.SmartAssign(ctx, domain.Fields{Title: "b"})
	require.NoError(t, err)
	mutations++
	for _, s := range []domain.Status{domain.StatusInProgress, domain.StatusDone} {
		_, err = f.engine.UpdateTaskStatus(ctx, b.ID, s)
		require.NoError(t, err)
		mutations++
	}
	require.NoError(t, f.engine.DeleteTask(ctx, a.ID))
	mutations++

	// Failed operations leave no entries.
	_, _ = f.engine.UpdateTaskStatus(ctx, a.ID, domain.StatusDone)
	_ = f.engine.DeleteTask(ctx, a.ID)

	assert.Len(t, f.ledger.calls(), mutations)
}
