package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/pkg/logger"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"go.uber.org/zap"
)

// ErrMissingOwner is returned when the feed is requested without an owner.
var ErrMissingOwner = errors.New("activity owner is required")

// ActivityModule consumes task events and serves each owner's recent activity.
type ActivityModule struct {
	feed *Feed
	log  *zap.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*ActivityModule)(nil)
	_ mono.EventConsumerModule   = (*ActivityModule)(nil)
	_ mono.ServiceProviderModule = (*ActivityModule)(nil)
	_ mono.HealthCheckableModule = (*ActivityModule)(nil)
)

// NewModule creates a new ActivityModule.
func NewModule(log *zap.Logger) *ActivityModule {
	return &ActivityModule{
		feed: NewFeed(),
		log:  logger.OrNop(log).Named("activity"),
	}
}

// Name returns the module name.
func (m *ActivityModule) Name() string {
	return "activity"
}

// RegisterEventConsumers subscribes to task events.
func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.log.Info("registered event consumers",
		zap.Strings("events", []string{"TaskCreated", "TaskUpdated", "TaskCompleted", "TaskDeleted"}))
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.feed.Record(event.Owner, Entry{
		TaskID:    event.TaskID,
		Type:      TypeTaskCreated,
		Message:   fmt.Sprintf("Task '%s' created in %s", event.Name, event.Category),
		Timestamp: event.CreatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.feed.Record(event.Owner, Entry{
		TaskID:    event.TaskID,
		Type:      TypeTaskUpdated,
		Message:   fmt.Sprintf("Task '%s' updated", event.Name),
		Timestamp: event.UpdatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.feed.Record(event.Owner, Entry{
		TaskID:    event.TaskID,
		Type:      TypeTaskCompleted,
		Message:   fmt.Sprintf("Task %s completed", event.TaskID),
		Timestamp: event.CompletedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.feed.Record(event.Owner, Entry{
		TaskID:    event.TaskID,
		Type:      TypeTaskDeleted,
		Message:   fmt.Sprintf("Task %s deleted", event.TaskID),
		Timestamp: event.DeletedAt,
	})
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-activity", json.Unmarshal, json.Marshal, m.handleListActivity,
	); err != nil {
		return fmt.Errorf("failed to register list-activity service: %w", err)
	}

	m.log.Info("registered services", zap.Strings("services", []string{"list-activity"}))
	return nil
}

func (m *ActivityModule) handleListActivity(_ context.Context, req ListActivityRequest, _ *mono.Msg) (ListActivityResponse, error) {
	if req.Owner == "" {
		return ListActivityResponse{}, ErrMissingOwner
	}
	return ListActivityResponse{Entries: m.feed.List(req.Owner)}, nil
}

// Start starts the module.
func (m *ActivityModule) Start(_ context.Context) error {
	m.log.Info("module started")
	return nil
}

// Stop stops the module.
func (m *ActivityModule) Stop(_ context.Context) error {
	m.log.Info("module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"owners": m.feed.Owners(),
		},
	}
}
