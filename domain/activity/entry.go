// Package activity provides the activity ledger entry.
package activity

import "time"

// UnknownUser is the display name for a ledger or task reference to a user
// that no longer exists in the directory.
const UnknownUser = "unknown user"

// Entry is an immutable record of one task mutation.
//
// ID grows with insertion order. Timestamp never decreases in insertion
// order but is not unique.
type Entry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string    `gorm:"not null" json:"action"`
	UserID    *string   `gorm:"size:36;index" json:"userId"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName returns the table name for GORM.
func (Entry) TableName() string {
	return "activity_logs"
}

// UserRef is the display data of a referenced user.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is an entry joined with the display data of its user.
type View struct {
	ID        uint64    `json:"id"`
	Action    string    `json:"action"`
	UserID    *string   `json:"userId"`
	User      *UserRef  `json:"user,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
