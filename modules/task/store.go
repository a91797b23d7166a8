package task

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	domain "github.com/example/task-workflow/domain/task"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store owns task rows.
type Store struct {
	db  *gorm.DB
	seq atomic.Int64
	now func() time.Time
}

// NewStore creates a Store over db. Call Migrate before use.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Migrate creates the tasks table and resumes the insertion sequence.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.AutoMigrate(&domain.Task{}); err != nil {
		return err
	}

	var maxSeq int64
	if err := s.db.WithContext(ctx).Model(&domain.Task{}).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
		return err
	}
	s.seq.Store(maxSeq)
	return nil
}

// Create validates fields and inserts a new task.
func (s *Store) Create(ctx context.Context, fields domain.Fields) (*domain.Task, error) {
	return s.CreateWithID(ctx, uuid.New().String(), fields)
}

// CreateWithID is Create with a caller chosen id.
func (s *Store) CreateWithID(ctx context.Context, id string, fields domain.Fields) (*domain.Task, error) {
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	t := &domain.Task{
		ID:          id,
		Seq:         s.seq.Add(1),
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		Priority:    fields.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if fields.AssignedUserID != "" {
		assignee := fields.AssignedUserID
		t.AssignedUserID = &assignee
	}

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, domain.StorageError("create task", err)
	}
	return t, nil
}

// Get returns the task with id.
func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, domain.StorageError("get task", err)
	}
	return &t, nil
}

// List returns tasks matching filter in insertion order.
func (s *Store) List(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Order("seq ASC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedUserID != "" {
		query = query.Where("assigned_user_id = ?", filter.AssignedUserID)
	}

	var tasks []domain.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, domain.StorageError("list tasks", err)
	}
	return tasks, nil
}

// UpdateStatus sets the status of one task and returns the updated task
// together with the status it replaced. The read and the write share one
// transaction so the returned old status is the one actually overwritten.
func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Task, domain.Status, error) {
	if !status.IsValid() {
		return nil, "", domain.NewValidationError("status", "status must be one of todo, inprogress, done")
	}

	var (
		updated domain.Task
		old     domain.Status
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			return err
		}
		old = updated.Status
		updated.Status = status
		updated.UpdatedAt = s.now()
		return tx.Model(&domain.Task{}).Where("id = ?", id).Updates(map[string]any{
			"status":     updated.Status,
			"updated_at": updated.UpdatedAt,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", domain.ErrTaskNotFound
		}
		return nil, "", domain.StorageError("update task status", err)
	}
	return &updated, old, nil
}

// Delete removes the task with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if result.Error != nil {
		return domain.StorageError("delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// countBatchSize keeps CountByAssignee under SQLite's bound parameter limit.
const countBatchSize = 500

// CountByAssignee returns the number of tasks in any status assigned to each
// of userIDs. Users without tasks are present with a zero count.
func (s *Store) CountByAssignee(ctx context.Context, userIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(userIDs))
	for _, id := range userIDs {
		counts[id] = 0
	}

	for start := 0; start < len(userIDs); start += countBatchSize {
		batch := userIDs[start:min(start+countBatchSize, len(userIDs))]

		var rows []struct {
			AssignedUserID string
			Count          int64
		}
		err := s.db.WithContext(ctx).Model(&domain.Task{}).
			Select("assigned_user_id, COUNT(*) AS count").
			Where("assigned_user_id IN ?", batch).
			Group("assigned_user_id").
			Scan(&rows).Error
		if err != nil {
			return nil, domain.StorageError("count tasks by assignee", err)
		}

		for _, r := range rows {
			counts[r.AssignedUserID] = r.Count
		}
	}
	return counts, nil
}
