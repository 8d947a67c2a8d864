package task

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the task operations other modules use. Every call names its owner.
type TaskPort interface {
	CreateTask(ctx context.Context, owner string, task *domain.Task) (*domain.InsertResult, error)
	ListTasks(ctx context.Context, owner string) ([]domain.Task, error)
	FilterTasks(ctx context.Context, owner, done, category string) ([]domain.Task, error)
	UpdateTask(ctx context.Context, owner, id string, fields domain.Fields) (*domain.UpdateResult, error)
	MarkTaskDone(ctx context.Context, owner, id string) (*domain.UpdateResult, error)
	DeleteTask(ctx context.Context, owner, id string) (*domain.DeleteResult, error)
}

// TaskAdapter implements TaskPort using the service container.
type TaskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	return &TaskAdapter{
		container: container,
	}
}

// CreateTask creates a task through the create-task service.
func (a *TaskAdapter) CreateTask(ctx context.Context, owner string, task *domain.Task) (*domain.InsertResult, error) {
	req := CreateTaskRequest{Owner: owner, Task: *task}
	var resp domain.InsertResult

	if err := call(ctx, a.container, "create-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTasks returns every task of owner.
func (a *TaskAdapter) ListTasks(ctx context.Context, owner string) ([]domain.Task, error) {
	req := ListTasksRequest{Owner: owner}
	var resp TasksResponse

	if err := call(ctx, a.container, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Tasks), nil
}

// FilterTasks returns the tasks of owner matching done and category.
func (a *TaskAdapter) FilterTasks(ctx context.Context, owner, done, category string) ([]domain.Task, error) {
	req := FilterTasksRequest{Owner: owner, Done: done, Category: category}
	var resp TasksResponse

	if err := call(ctx, a.container, "filter-tasks", &req, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Tasks), nil
}

// UpdateTask replaces the mutable fields of owner's task id.
func (a *TaskAdapter) UpdateTask(ctx context.Context, owner, id string, fields domain.Fields) (*domain.UpdateResult, error) {
	req := UpdateTaskRequest{Owner: owner, ID: id, Fields: fields}
	var resp domain.UpdateResult

	if err := call(ctx, a.container, "update-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkTaskDone sets done on owner's task id.
func (a *TaskAdapter) MarkTaskDone(ctx context.Context, owner, id string) (*domain.UpdateResult, error) {
	req := ScopedTaskRequest{Owner: owner, ID: id}
	var resp domain.UpdateResult

	if err := call(ctx, a.container, "mark-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask removes owner's task id.
func (a *TaskAdapter) DeleteTask(ctx context.Context, owner, id string) (*domain.DeleteResult, error) {
	req := ScopedTaskRequest{Owner: owner, ID: id}
	var resp domain.DeleteResult

	if err := call(ctx, a.container, "delete-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// call sends req to service and decodes the reply into resp.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return remoteError(service, err)
	}
	return nil
}

func nonNil(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return []domain.Task{}
	}
	return tasks
}

// knownErrors are recovered by message after crossing the request-reply boundary.
var knownErrors = []error{
	domain.ErrInvalidID,
	domain.ErrInvalidCategory,
	domain.ErrInvalidDone,
	domain.ErrMissingOwner,
	ErrOwnerMismatch,
	ErrMissingName,
}

func remoteError(service string, err error) error {
	msg := err.Error()
	for _, known := range knownErrors {
		if strings.Contains(msg, known.Error()) {
			return known
		}
	}
	return fmt.Errorf("%s request failed: %w", service, err)
}
