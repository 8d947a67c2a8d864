package task

import (
	"context"
	"fmt"

	domain "github.com/example/task-tracker/domain/task"
	"gorm.io/gorm"
)

// Repository is the task store. Reads take a Query and writes take a Scope,
// so every statement it issues carries the owner condition.
type Repository interface {
	Insert(ctx context.Context, task *domain.Task) error
	Find(ctx context.Context, q domain.Query) ([]*domain.Task, error)
	Replace(ctx context.Context, scope domain.Scope, fields domain.Fields) (domain.UpdateResult, error)
	MarkDone(ctx context.Context, scope domain.Scope) (domain.UpdateResult, error)
	Delete(ctx context.Context, scope domain.Scope) (domain.DeleteResult, error)
}

// GormRepository stores tasks in a SQL table through GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new task repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Insert saves a new task.
func (r *GormRepository) Insert(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Find returns the tasks matching q in store order.
func (r *GormRepository) Find(ctx context.Context, q domain.Query) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0)
	if err := r.db.WithContext(ctx).Where(q.Predicate()).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// Replace overwrites the mutable fields of the scoped task. SQLite reports matched
// rows as affected, so MatchedCount and ModifiedCount are equal.
func (r *GormRepository) Replace(ctx context.Context, scope domain.Scope, fields domain.Fields) (domain.UpdateResult, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where(scope.Predicate()).
		Updates(map[string]any{
			"name":        fields.Name,
			"description": fields.Description,
			"due_at":      fields.DueAt,
			"done":        fields.Done,
			"category":    string(fields.Category),
		})
	if err := result.Error; err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update task: %w", err)
	}
	return updateResult(result.RowsAffected), nil
}

// MarkDone sets done on the scoped task.
func (r *GormRepository) MarkDone(ctx context.Context, scope domain.Scope) (domain.UpdateResult, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where(scope.Predicate()).
		Update("done", true)
	if err := result.Error; err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to mark task as done: %w", err)
	}
	return updateResult(result.RowsAffected), nil
}

// Delete removes the scoped task.
func (r *GormRepository) Delete(ctx context.Context, scope domain.Scope) (domain.DeleteResult, error) {
	result := r.db.WithContext(ctx).Where(scope.Predicate()).Delete(&domain.Task{})
	if err := result.Error; err != nil {
		return domain.DeleteResult{}, fmt.Errorf("failed to delete task: %w", err)
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: result.RowsAffected}, nil
}

func updateResult(affected int64) domain.UpdateResult {
	return domain.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  affected,
		ModifiedCount: affected,
	}
}
