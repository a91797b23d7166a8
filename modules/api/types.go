package api

import (
	domain "github.com/example/task-workflow/domain/task"
	userdomain "github.com/example/task-workflow/domain/user"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse confirms a registration.
type RegisterResponse struct {
	Message string             `json:"message"`
	User    userdomain.Profile `json:"user"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskRequest is the body of POST /api/tasks and POST /api/tasks/smart-assign.
type CreateTaskRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	Priority       string `json:"priority"`
	AssignedUserID string `json:"assignedUserId"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/:id.
type UpdateTaskRequest struct {
	Status string `json:"status"`
}

// SmartAssignResponse wraps a smart-assigned task.
type SmartAssignResponse struct {
	Message string      `json:"message"`
	Task    domain.Task `json:"task"`
}

// HealthResponse reports the health of every registered module.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Modules map[string]ModuleHealth `json:"modules,omitempty"`
}

// ModuleHealth is the health of one module.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
