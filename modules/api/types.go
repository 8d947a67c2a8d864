package api

import (
	"github.com/example/task-tracker/modules/activity"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token. ExpiresIn is the token's exp claim in unix seconds.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	UserID    string `json:"userId"`
}

// TaskPayload is the body of task create and update requests.
// Timestamps are ISO 8601 strings; CREATED_BY must be the caller.
type TaskPayload struct {
	CreatedBy   string `json:"CREATED_BY" validate:"required,email"`
	CreatedAt   string `json:"CREATED_AT" validate:"required,iso8601"`
	Name        string `json:"TASK_NAME" validate:"required"`
	Description string `json:"TASK_DESC"`
	DueAt       string `json:"TASK_TIME" validate:"required,iso8601"`
	Done        *bool  `json:"DONE" validate:"required"`
	Category    string `json:"CATEGORY" validate:"required,category"`
}

// MarkRequest is the body of POST /tasks/mark.
type MarkRequest struct {
	ID string `json:"id"`
}

// ActivityResponse wraps the caller's activity feed.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse lists every rejected field of a request.
type ValidationErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}
