package user

import (
	"time"
)

// User is a directory entry. Directory order is CreatedAt, then ID.
type User struct {
	ID           string    `gorm:"primaryKey;type:text"`
	Name         string    `gorm:"not null;type:text"`
	Email        string    `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string    `gorm:"not null;type:text"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Profile is the public view of a user.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ToProfile strips the credential.
func (u *User) ToProfile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Session is returned by a successful login.
type Session struct {
	Token     string  `json:"token"`
	ExpiresIn int64   `json:"expires_in"`
	TokenType string  `json:"token_type"`
	User      Profile `json:"user"`
}

// Claims represents validated token claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
