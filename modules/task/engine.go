package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	activitydomain "github.com/example/task-workflow/domain/activity"
	domain "github.com/example/task-workflow/domain/task"
	"github.com/example/task-workflow/events"
	"github.com/google/uuid"
)

// Ledger records one activity entry per mutation.
type Ledger interface {
	Append(ctx context.Context, action, userID string) (*activitydomain.Entry, error)
}

// Notifier receives task events once a mutation and its ledger entry are
// both written. Implementations must not block.
type Notifier interface {
	TaskCreated(ctx context.Context, evt events.TaskCreatedEvent)
	TaskStatusChanged(ctx context.Context, evt events.TaskStatusChangedEvent)
	TaskDeleted(ctx context.Context, evt events.TaskDeletedEvent)
}

// Engine runs the task workflow: every mutation goes through the store and
// leaves exactly one entry in the ledger. A per-task lock is held from the
// store write through the ledger append, so entries for one task are appended
// in the order its writes were applied.
type Engine struct {
	store     *Store
	locks     *taskLocks
	selector  *Selector
	directory Directory
	ledger    Ledger
	loads     LoadCounter
	notifier  Notifier
	now       func() time.Time
}

// NewEngine creates an Engine. notifier may be nil.
func NewEngine(store *Store, directory Directory, ledger Ledger, loads LoadCounter, notifier Notifier) *Engine {
	if loads == nil {
		loads = NewStoreLoadCounter(store)
	}
	return &Engine{
		store:     store,
		locks:     newTaskLocks(),
		selector:  NewSelector(directory, loads),
		directory: directory,
		ledger:    ledger,
		loads:     loads,
		notifier:  notifier,
		now:       time.Now,
	}
}

// CreateTask validates fields, stores the task and records it in the ledger.
// A non-empty assignee must exist in the directory.
func (e *Engine) CreateTask(ctx context.Context, fields domain.Fields) (*domain.Task, error) {
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if fields.AssignedUserID != "" {
		exists, err := e.directory.UserExists(ctx, fields.AssignedUserID)
		if err != nil {
			return nil, domain.StorageError("check assignee", err)
		}
		if !exists {
			return nil, domain.NewValidationError("assignedUserId", "assigned user does not exist")
		}
	}

	id := uuid.New().String()
	unlock := e.locks.lock(id)
	defer unlock()

	t, err := e.store.CreateWithID(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	e.loads.Invalidate(ctx, t.Assignee())

	if err := e.record(ctx, fmt.Sprintf(`Created task "%s"`, t.Title), t.Assignee()); err != nil {
		return t, &domain.PartiallyAppliedError{Op: "create task", Task: t, Err: err}
	}

	e.notifyCreated(ctx, t, false)
	log.Printf("[task] Created task %s (%q)", t.ID, t.Title)
	return t, nil
}

// UpdateTaskStatus moves a task to status. Any status may follow any other,
// including itself; every call is recorded.
func (e *Engine) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (*domain.Task, error) {
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "status must be one of todo, inprogress, done")
	}

	unlock := e.locks.lock(id)
	defer unlock()

	t, old, err := e.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	action := fmt.Sprintf(`Updated task "%s" → status: %s (was %s)`, t.Title, t.Status, old)
	if err := e.record(ctx, action, t.Assignee()); err != nil {
		return t, &domain.PartiallyAppliedError{Op: "update task status", Task: t, Err: err}
	}

	if e.notifier != nil {
		e.notifier.TaskStatusChanged(ctx, events.TaskStatusChangedEvent{
			TaskID:         t.ID,
			Title:          t.Title,
			OldStatus:      string(old),
			NewStatus:      string(t.Status),
			AssignedUserID: t.Assignee(),
			ChangedAt:      t.UpdatedAt,
		})
	}
	log.Printf("[task] Task %s status %s -> %s", t.ID, old, t.Status)
	return t, nil
}

// SmartAssign creates a task assigned to the least loaded user. Any assignee
// in fields is ignored. With no users in the directory nothing is written.
func (e *Engine) SmartAssign(ctx context.Context, fields domain.Fields) (*domain.Task, error) {
	fields = fields.Normalize()
	fields.AssignedUserID = ""
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	assignee, err := e.selector.SelectLeastLoaded(ctx)
	if err != nil {
		return nil, err
	}
	fields.AssignedUserID = assignee.ID

	id := uuid.New().String()
	unlock := e.locks.lock(id)
	defer unlock()

	t, err := e.store.CreateWithID(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	e.loads.Invalidate(ctx, assignee.ID)

	action := fmt.Sprintf(`Smart assigned "%s" to User ID %s`, t.Title, assignee.ID)
	if err := e.record(ctx, action, assignee.ID); err != nil {
		return t, &domain.PartiallyAppliedError{Op: "smart assign task", Task: t, Err: err}
	}

	e.notifyCreated(ctx, t, true)
	log.Printf("[task] Smart assigned task %s to %s (%s)", t.ID, assignee.Name, assignee.ID)
	return t, nil
}

// DeleteTask removes a task. The ledger entry is written first: if it cannot
// be written the task is left in place. If the row then cannot be removed the
// entry already exists and a PartiallyAppliedError is returned.
func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	unlock := e.locks.lock(id)
	defer unlock()

	t, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := e.record(ctx, fmt.Sprintf(`Deleted task "%s"`, t.Title), t.Assignee()); err != nil {
		return err
	}

	if err := e.store.Delete(ctx, id); err != nil {
		// Removed outside this engine: the task is gone either way.
		if !errors.Is(err, domain.ErrTaskNotFound) {
			return &domain.PartiallyAppliedError{Op: "delete task", Task: t, Err: err}
		}
	}
	e.loads.Invalidate(ctx, t.Assignee())

	if e.notifier != nil {
		e.notifier.TaskDeleted(ctx, events.TaskDeletedEvent{
			TaskID:         t.ID,
			Title:          t.Title,
			AssignedUserID: t.Assignee(),
			DeletedAt:      e.now(),
		})
	}
	log.Printf("[task] Deleted task %s (%q)", t.ID, t.Title)
	return nil
}

// GetTask returns one task.
func (e *Engine) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return e.store.Get(ctx, id)
}

// ListTasks returns tasks matching filter with their assignee names resolved.
func (e *Engine) ListTasks(ctx context.Context, filter domain.Filter) ([]TaskView, error) {
	tasks, err := e.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var ids []string
	for i := range tasks {
		if a := tasks[i].Assignee(); a != "" {
			ids = append(ids, a)
		}
	}
	names := map[string]string{}
	if len(ids) > 0 {
		names, err = e.directory.ResolveUsers(ctx, ids)
		if err != nil {
			return nil, domain.StorageError("resolve assignees", err)
		}
	}

	views := make([]TaskView, len(tasks))
	for i := range tasks {
		views[i] = newTaskView(tasks[i], names)
	}
	return views, nil
}

// record appends a ledger entry and wraps its failure as a storage failure.
func (e *Engine) record(ctx context.Context, action, userID string) error {
	if _, err := e.ledger.Append(ctx, action, userID); err != nil {
		log.Printf("[task] Failed to record activity %q: %v", action, err)
		return domain.StorageError("record activity", err)
	}
	return nil
}

func (e *Engine) notifyCreated(ctx context.Context, t *domain.Task, smart bool) {
	if e.notifier == nil {
		return
	}
	e.notifier.TaskCreated(ctx, events.TaskCreatedEvent{
		TaskID:         t.ID,
		Title:          t.Title,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		AssignedUserID: t.Assignee(),
		SmartAssigned:  smart,
		CreatedAt:      t.CreatedAt,
	})
}
