package ratelimit

import (
	"context"
	"fmt"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/pkg/logger"
	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "task-tracker:ratelimit:"

// RateLimitModule owns the Redis connection and the rate limit middleware.
type RateLimitModule struct {
	cfg        config.RateLimitConfig
	client     *redis.Client
	middleware *Middleware
	log        *zap.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*RateLimitModule)(nil)
var _ mono.HealthCheckableModule = (*RateLimitModule)(nil)

// NewModule creates a new RateLimitModule.
func NewModule(cfg config.RateLimitConfig, log *zap.Logger) *RateLimitModule {
	return &RateLimitModule{
		cfg: cfg,
		log: logger.OrNop(log).Named("ratelimit"),
	}
}

// Name returns the module name.
func (m *RateLimitModule) Name() string {
	return "ratelimit"
}

// Start connects to Redis and builds the middleware.
func (m *RateLimitModule) Start(ctx context.Context) error {
	m.client = redis.NewClient(&redis.Options{
		Addr: m.cfg.RedisAddr,
	})

	if err := m.client.Ping(ctx).Err(); err != nil {
		_ = m.client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.middleware = NewMiddleware(
		NewSlidingWindowLimiter(m.client, PerMinute(m.cfg.AuthPerMinute), keyPrefix+"auth:"),
		NewSlidingWindowLimiter(m.client, PerMinute(m.cfg.TasksPerMinute), keyPrefix+"tasks:"),
		m.log,
	)

	m.log.Info("module started",
		zap.String("redis_addr", m.cfg.RedisAddr),
		zap.Int("auth_per_minute", m.cfg.AuthPerMinute),
		zap.Int("tasks_per_minute", m.cfg.TasksPerMinute))
	return nil
}

// Stop closes the Redis connection.
func (m *RateLimitModule) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			m.log.Warn("failed to close Redis connection", zap.Error(err))
		}
	}
	m.log.Info("module stopped")
	return nil
}

// Health reports whether Redis answers.
func (m *RateLimitModule) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{Healthy: false, Message: "Redis client not initialized"}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("Redis ping failed: %v", err)}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// Middleware returns the rate limit middleware; nil until the module has started.
func (m *RateLimitModule) Middleware() *Middleware {
	return m.middleware
}
