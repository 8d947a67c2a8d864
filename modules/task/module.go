package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/pkg/logger"
	"github.com/example/task-tracker/store"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"go.uber.org/zap"
)

// TaskModule provides owner-scoped task services and emits task events.
type TaskModule struct {
	storeCfg config.StoreConfig
	store    *store.Handle
	service  *TaskService
	eventBus mono.EventBus
	log      *zap.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule(storeCfg config.StoreConfig, log *zap.Logger) *TaskModule {
	return &TaskModule{
		storeCfg: storeCfg,
		log:      logger.OrNop(log).Named("task"),
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus is called by the framework to inject the event bus.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// Start opens the task store and wires the service.
func (m *TaskModule) Start(ctx context.Context) error {
	h, err := store.Open(ctx, m.storeCfg, &domain.Task{})
	if err != nil {
		return err
	}
	m.store = h

	var repo Repository
	if h.SQL != nil {
		repo = NewGormRepository(h.SQL)
	} else {
		repo, err = NewMongoRepository(ctx, h.Mongo)
		if err != nil {
			return err
		}
	}

	var emit Emitter
	if m.eventBus != nil {
		emit = busEmitter(m.eventBus)
	}
	m.service = NewTaskService(repo, emit, m.log)

	m.log.Info("module started", zap.String("driver", h.Driver()))
	return nil
}

// Stop closes the task store.
func (m *TaskModule) Stop(ctx context.Context) error {
	if m.store != nil {
		if err := m.store.Close(ctx); err != nil {
			m.log.Warn("failed to close store", zap.Error(err))
		}
	}
	m.log.Info("module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}

	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.store.Driver(),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.handleCreate,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "filter-tasks", json.Unmarshal, json.Marshal, m.handleFilter,
	); err != nil {
		return fmt.Errorf("failed to register filter-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.handleUpdate,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "mark-task", json.Unmarshal, json.Marshal, m.handleMark,
	); err != nil {
		return fmt.Errorf("failed to register mark-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	m.log.Info("registered services", zap.Strings("services", []string{
		"create-task", "list-tasks", "filter-tasks", "update-task", "mark-task", "delete-task",
	}))
	return nil
}

func (m *TaskModule) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (domain.InsertResult, error) {
	task := req.Task
	res, err := m.service.Create(ctx, req.Owner, &task)
	if err != nil {
		return domain.InsertResult{}, err
	}

	m.log.Debug("task created", zap.String("owner", req.Owner), zap.String("task_id", res.InsertedID))
	return res, nil
}

func (m *TaskModule) handleList(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (TasksResponse, error) {
	tasks, err := m.service.List(ctx, req.Owner)
	if err != nil {
		return TasksResponse{}, err
	}
	return tasksResponse(tasks), nil
}

func (m *TaskModule) handleFilter(ctx context.Context, req FilterTasksRequest, _ *mono.Msg) (TasksResponse, error) {
	tasks, err := m.service.Filter(ctx, req.Owner, req.Done, req.Category)
	if err != nil {
		return TasksResponse{}, err
	}
	return tasksResponse(tasks), nil
}

func (m *TaskModule) handleUpdate(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (domain.UpdateResult, error) {
	return m.service.Update(ctx, req.Owner, req.ID, req.Fields)
}

func (m *TaskModule) handleMark(ctx context.Context, req ScopedTaskRequest, _ *mono.Msg) (domain.UpdateResult, error) {
	return m.service.MarkDone(ctx, req.Owner, req.ID)
}

func (m *TaskModule) handleDelete(ctx context.Context, req ScopedTaskRequest, _ *mono.Msg) (domain.DeleteResult, error) {
	return m.service.Delete(ctx, req.Owner, req.ID)
}

func tasksResponse(tasks []*domain.Task) TasksResponse {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return TasksResponse{Tasks: out}
}

// busEmitter publishes task events on the mono event bus.
func busEmitter(bus mono.EventBus) Emitter {
	return func(event any) error {
		switch e := event.(type) {
		case events.TaskCreatedEvent:
			return events.TaskCreatedV1.Publish(bus, e, nil)
		case events.TaskUpdatedEvent:
			return events.TaskUpdatedV1.Publish(bus, e, nil)
		case events.TaskCompletedEvent:
			return events.TaskCompletedV1.Publish(bus, e, nil)
		case events.TaskDeletedEvent:
			return events.TaskDeletedV1.Publish(bus, e, nil)
		default:
			return fmt.Errorf("unsupported task event %T", event)
		}
	}
}
