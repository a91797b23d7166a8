package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/example/task-workflow/domain/activity"
	"gorm.io/gorm"
)

// ErrLedgerUnavailable wraps every persistence failure of the ledger.
var ErrLedgerUnavailable = errors.New("activity ledger unavailable")

// Ledger is the append-only activity log.
//
// Appends are serialized so that id order, timestamp order and call order
// agree. A timestamp that would go backwards (clock step) is clamped to the
// previous one.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewLedger creates a Ledger over db.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// Migrate creates the table and loads the newest timestamp.
func (l *Ledger) Migrate(ctx context.Context) error {
	if err := l.db.AutoMigrate(&domain.Entry{}); err != nil {
		return err
	}

	var newest domain.Entry
	err := l.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").Limit(1).Find(&newest).Error
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.last = newest.Timestamp
	l.mu.Unlock()
	return nil
}

// Append records action. userID may be nil.
func (l *Ledger) Append(ctx context.Context, action string, userID *string) (*domain.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().UTC()
	if ts.Before(l.last) {
		ts = l.last
	}

	entry := &domain.Entry{
		Action:    action,
		UserID:    userID,
		Timestamp: ts,
	}
	if err := l.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}

	l.last = ts
	return entry, nil
}

// ListRecent returns entries newest first, ties broken by insertion order.
// A limit of zero or less returns every entry.
func (l *Ledger) ListRecent(ctx context.Context, limit int) ([]domain.Entry, error) {
	query := l.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []domain.Entry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	return entries, nil
}

// Count returns the number of entries.
func (l *Ledger) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := l.db.WithContext(ctx).Model(&domain.Entry{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	return count, nil
}
