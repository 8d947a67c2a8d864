package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/pkg/logger"
	"go.uber.org/zap"
)

var (
	// ErrOwnerMismatch is returned when a new task names someone other than the caller as its creator.
	ErrOwnerMismatch = errors.New("task creator must be the authenticated user")
	// ErrMissingName is returned when a task has no name.
	ErrMissingName = errors.New("task name is required")
)

// Emitter publishes a task event. Publishing is best effort.
type Emitter func(event any) error

// TaskService implements task operations, all scoped to an owner.
type TaskService struct {
	repo Repository
	emit Emitter
	log  *zap.Logger
	now  func() time.Time
}

// NewTaskService creates a new TaskService. A nil emitter disables events.
func NewTaskService(repo Repository, emit Emitter, log *zap.Logger) *TaskService {
	return &TaskService{
		repo: repo,
		emit: emit,
		log:  logger.OrNop(log),
		now:  time.Now,
	}
}

// Create inserts task for owner under a fresh identifier.
func (s *TaskService) Create(ctx context.Context, owner string, task *domain.Task) (domain.InsertResult, error) {
	if owner == "" {
		return domain.InsertResult{}, domain.ErrMissingOwner
	}
	if task.CreatedBy != owner {
		return domain.InsertResult{}, ErrOwnerMismatch
	}
	if err := validateFields(task.Fields()); err != nil {
		return domain.InsertResult{}, err
	}

	task.ID = domain.NewID()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.now().UTC()
	}

	if err := s.repo.Insert(ctx, task); err != nil {
		return domain.InsertResult{}, err
	}

	s.publish(events.TaskCreatedEvent{
		TaskID:    task.ID,
		Owner:     owner,
		Name:      task.Name,
		Category:  string(task.Category),
		CreatedAt: s.now().UTC(),
	})

	return domain.InsertResult{Acknowledged: true, InsertedID: task.ID}, nil
}

// List returns every task of owner.
func (s *TaskService) List(ctx context.Context, owner string) ([]*domain.Task, error) {
	q, err := domain.OwnedBy(owner)
	if err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, q)
}

// Filter returns the tasks of owner matching the raw done and category values.
// With both values empty it behaves like List.
func (s *TaskService) Filter(ctx context.Context, owner, done, category string) ([]*domain.Task, error) {
	q, err := domain.ParseFilter(owner, done, category)
	if err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, q)
}

// Update replaces the mutable fields of owner's task id.
// A task that is missing or owned by someone else matches nothing.
func (s *TaskService) Update(ctx context.Context, owner, id string, fields domain.Fields) (domain.UpdateResult, error) {
	scope, err := domain.NewScope(owner, id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	if err := validateFields(fields); err != nil {
		return domain.UpdateResult{}, err
	}

	res, err := s.repo.Replace(ctx, scope, fields)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	if res.MatchedCount > 0 {
		s.publish(events.TaskUpdatedEvent{
			TaskID:    id,
			Owner:     owner,
			Name:      fields.Name,
			Done:      fields.Done,
			UpdatedAt: s.now().UTC(),
		})
	}
	return res, nil
}

// MarkDone sets done on owner's task id.
func (s *TaskService) MarkDone(ctx context.Context, owner, id string) (domain.UpdateResult, error) {
	scope, err := domain.NewScope(owner, id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	res, err := s.repo.MarkDone(ctx, scope)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	if res.MatchedCount > 0 {
		s.publish(events.TaskCompletedEvent{
			TaskID:      id,
			Owner:       owner,
			CompletedAt: s.now().UTC(),
		})
	}
	return res, nil
}

// Delete removes owner's task id.
func (s *TaskService) Delete(ctx context.Context, owner, id string) (domain.DeleteResult, error) {
	scope, err := domain.NewScope(owner, id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	res, err := s.repo.Delete(ctx, scope)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	if res.DeletedCount > 0 {
		s.publish(events.TaskDeletedEvent{
			TaskID:    id,
			Owner:     owner,
			DeletedAt: s.now().UTC(),
		})
	}
	return res, nil
}

func (s *TaskService) publish(event any) {
	if s.emit == nil {
		return
	}
	if err := s.emit(event); err != nil {
		s.log.Warn("failed to publish task event",
			zap.String("event", fmt.Sprintf("%T", event)),
			zap.Error(err))
	}
}

func validateFields(f domain.Fields) error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrMissingName
	}
	if !f.Category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCategory, f.Category)
	}
	return nil
}
