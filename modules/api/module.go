package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/ratelimit"
	"github.com/example/task-tracker/modules/task"
	applog "github.com/example/task-tracker/pkg/logger"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIModule is the HTTP API module.
type APIModule struct {
	port            int
	app             *fiber.App
	authAdapter     auth.AuthPort
	taskAdapter     task.TaskPort
	activityAdapter activity.ActivityPort
	rateLimiter     *ratelimit.RateLimitModule
	log             *zap.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule listening on port.
func NewModule(port int, log *zap.Logger) *APIModule {
	return &APIModule{
		port: port,
		log:  applog.OrNop(log).Named("api"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	case "activity":
		m.activityAdapter = activity.NewActivityAdapter(container)
	}
}

// SetRateLimiter enables rate limiting through rl. It must be started before this module.
func (m *APIModule) SetRateLimiter(rl *ratelimit.RateLimitModule) {
	m.rateLimiter = rl
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authAdapter == nil || m.taskAdapter == nil || m.activityAdapter == nil {
		return fmt.Errorf("api dependencies not set")
	}

	var limits *ratelimit.Middleware
	if m.rateLimiter != nil {
		limits = m.rateLimiter.Middleware()
	}

	handlers := NewHandlers(m.authAdapter, m.taskAdapter, m.activityAdapter, m.log)
	m.app = NewApp(handlers, NewAuthGate(m.authAdapter, m.log), limits, m.log)

	addr := fmt.Sprintf(":%d", m.port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			m.log.Error("HTTP server error", zap.Error(err))
		}
	}()

	m.log.Info("HTTP server started",
		zap.String("addr", addr),
		zap.Bool("rate_limited", limits != nil))
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.log.Info("shutting down HTTP server")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// NewApp builds the Fiber app with every route. A nil limits disables rate limiting.
func NewApp(h *Handlers, gate *AuthGate, limits *ratelimit.Middleware, log *zap.Logger) *fiber.App {
	log = applog.OrNop(log)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	app.Get("/", h.Root)
	app.Get("/health", h.Health)

	authRoutes := app.Group("/auth")
	if limits != nil {
		authRoutes.Use(limits.IPRateLimit())
	}
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)

	protected := []fiber.Handler{gate.Handler()}
	if limits != nil {
		protected = append(protected, limits.IdentityRateLimit(identityKey))
	}

	tasks := app.Group("/tasks", protected...)
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/filter", h.FilterTasks)
	tasks.Post("/mark", h.MarkTask)
	tasks.Delete("/", h.DeleteTask)
	tasks.Patch("/:id", h.UpdateTask)

	app.Get("/activity", append(protected, h.Activity)...)

	return app
}

// errorHandler renders Fiber errors and panics in the ErrorResponse shape.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.Error("unhandled error",
				zap.String("request_id", requestID(c)),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		return c.Status(code).JSON(ErrorResponse{
			Error:   "server_error",
			Message: message,
		})
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}
