package task

import (
	domain "github.com/example/task-tracker/domain/task"
)

// CreateTaskRequest is the request for the create-task service.
type CreateTaskRequest struct {
	Owner string      `json:"owner"`
	Task  domain.Task `json:"task"`
}

// ListTasksRequest is the request for the list-tasks service.
type ListTasksRequest struct {
	Owner string `json:"owner"`
}

// FilterTasksRequest is the request for the filter-tasks service.
// Done and Category carry the raw query values; empty means not supplied.
type FilterTasksRequest struct {
	Owner    string `json:"owner"`
	Done     string `json:"done,omitempty"`
	Category string `json:"category,omitempty"`
}

// TasksResponse is the response for the list-tasks and filter-tasks services.
type TasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// UpdateTaskRequest is the request for the update-task service.
type UpdateTaskRequest struct {
	Owner  string        `json:"owner"`
	ID     string        `json:"id"`
	Fields domain.Fields `json:"fields"`
}

// ScopedTaskRequest addresses one task of one owner, for the mark-task and delete-task services.
type ScopedTaskRequest struct {
	Owner string `json:"owner"`
	ID    string `json:"id"`
}
