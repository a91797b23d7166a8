package user

import (
	domain "github.com/example/task-workflow/domain/user"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse carries the created profile.
type RegisterResponse struct {
	User domain.Profile `json:"user"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session.
type LoginResponse struct {
	Session domain.Session `json:"session"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ListUsersRequest is empty; the directory has no filters.
type ListUsersRequest struct{}

// ListUsersResponse lists the directory in order.
type ListUsersResponse struct {
	Users []domain.Profile `json:"users"`
}

// UserExistsRequest asks whether a user id is known.
type UserExistsRequest struct {
	UserID string `json:"user_id"`
}

// UserExistsResponse answers UserExistsRequest.
type UserExistsResponse struct {
	Exists bool `json:"exists"`
}

// ResolveUsersRequest asks for display names.
type ResolveUsersRequest struct {
	UserIDs []string `json:"user_ids"`
}

// ResolveUsersResponse maps user id to display name.
type ResolveUsersResponse struct {
	Names map[string]string `json:"names"`
}
