package api

import (
	"errors"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth     auth.AuthPort
	tasks    task.TaskPort
	activity activity.ActivityPort
	validate *validator.Validate
	log      *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authPort auth.AuthPort, taskPort task.TaskPort, activityPort activity.ActivityPort, log *zap.Logger) *Handlers {
	return &Handlers{
		auth:     authPort,
		tasks:    taskPort,
		activity: activityPort,
		validate: newValidator(),
		log:      logger.OrNop(log),
	}
}

// Root answers with a greeting.
func (h *Handlers) Root(c *fiber.Ctx) error {
	return c.SendString("Hello, World!")
}

// Health reports that the HTTP server is serving.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"module": "api",
	})
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if errs := h.parse(c, &req); errs != nil {
		return validationFailed(c, errs)
	}

	if _, err := h.auth.Register(c.UserContext(), req.Email, req.Password); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(MessageResponse{
		Message: "User registered successfully",
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if errs := h.parse(c, &req); errs != nil {
		return validationFailed(c, errs)
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(LoginResponse{
		Token:     session.Token,
		ExpiresIn: session.ExpiresAt.Unix(),
		UserID:    session.Email,
	})
}

// ListTasks returns every task of the caller.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	id, ok := IdentityFrom(c)
	if !ok {
		return unauthorized(c, "No token provided")
	}

	tasks, err := h.tasks.ListTasks(c.UserContext(), id.Email)
	if err != nil {
		return h.handleTaskError(c, "Failed to retrieve tasks", err)
	}
	return c.Status(fiber.StatusOK).JSON(tasks)
}

// CreateTask creates a task owned by the caller.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	id, ok := IdentityFrom(c)
	if !ok {
		return unauthorized(c, "No token provided")
	}

	var payload TaskPayload
	if errs := h.parse(c, &payload); errs != nil {
		return validationFailed(c, errs)
	}
	if payload.CreatedBy != id.Email {
		return creatorMismatch(c)
	}

	t := payloadTask(payload)
	res, err := h.tasks.CreateTask(c.UserContext(), id.Email, &t)
	if err != nil {
		return h.handleTaskError(c, "Failed to create task", err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// UpdateTask replaces the mutable fields of one of the caller's tasks.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	id, ok := IdentityFrom(c)
	if !ok {
		return unauthorized(c, "No token provided")
	}

	taskID := c.Params("id")
	if !domain.ValidID(taskID) {
		return invalidTaskID(c)
	}

	var payload TaskPayload
	if errs := h.parse(c, &payload); errs != nil {
		return validationFailed(c, errs)
	}
	if payload.CreatedBy != id.Email {
		return creatorMismatch(c)
	}

	t := payloadTask(payload)
	res, err := h.tasks.UpdateTask(c.UserContext(), id.Email, taskID, t.Fields())
	if err != nil {
		return h.handleTaskError(c, "Failed to update task", err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// DeleteTask removes one of the caller's tasks, named by the id query parameter.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	id, ok := IdentityFrom(c)
	if !ok {
		return unauthorized(c, "No token provided")
	}

	taskID := c.Query("id")
	if !domain.ValidID(taskID) {
		return invalidTaskID(c)
	}

	res, err := h.tasks.DeleteTask(c.UserContext(), id.Email, taskID)
	if err != nil {
		return h.handleTaskError(c, "Failed to delete task", err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// MarkTask marks one of the caller's tasks as done.
func (h *Handlers) MarkTask(c *fiber.Ctx) error {
	id, ok := IdentityFrom(c)
	if !ok {
		return unauthorized(c, "No token provided")
	}

	var req MarkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !domain.ValidID(req.ID) {
		return invalidTaskID(c)
	}

	res, err := h.tasks.MarkTaskDone(c.UserContext(), id.Email, req.ID)
	if err != nil {
		return h.handleTaskError(c, "Failed to mark task as done", err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// FilterTasks returns the caller's tasks narrowed by the done and category query parameters.
func (h *Handlers) FilterTasks(c *fiber.Ctx) error {
	id, ok := IdentityFrom(c)
	if !ok {
		return unauthorized(c, "No token provided")
	}

	done, category := c.Query("done"), c.Query("category")
	if _, err := domain.ParseFilter(id.Email, done, category); err != nil {
		return h.handleTaskError(c, "Failed to retrieve tasks", err)
	}

	tasks, err := h.tasks.FilterTasks(c.UserContext(), id.Email, done, category)
	if err != nil {
		return h.handleTaskError(c, "Failed to retrieve tasks", err)
	}
	return c.Status(fiber.StatusOK).JSON(tasks)
}

// Activity returns the caller's recent task activity.
func (h *Handlers) Activity(c *fiber.Ctx) error {
	id, ok := IdentityFrom(c)
	if !ok {
		return unauthorized(c, "No token provided")
	}

	entries, err := h.activity.ListActivity(c.UserContext(), id.Email)
	if err != nil {
		h.log.Error("failed to list activity",
			zap.String("request_id", requestID(c)),
			zap.String("owner", id.Email),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve activity: " + err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(ActivityResponse{Entries: entries})
}

// parse reads the body into req and validates it.
func (h *Handlers) parse(c *fiber.Ctx, req any) []FieldError {
	if err := c.BodyParser(req); err != nil {
		return []FieldError{{Message: "Invalid request body"}}
	}
	if err := h.validate.Struct(req); err != nil {
		return fieldErrors(err)
	}
	return nil
}

// handleAuthError maps auth errors to responses. Unknown errors are store failures.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return badRequest(c, "Invalid email or password")
	case errors.Is(err, auth.ErrUserExists):
		return badRequest(c, "User already exists")
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong):
		return badRequest(c, err.Error())
	default:
		h.log.Error("auth request failed", zap.String("request_id", requestID(c)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

// handleTaskError maps task errors to responses; action prefixes store failures.
func (h *Handlers) handleTaskError(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		return invalidTaskID(c)
	case errors.Is(err, domain.ErrInvalidDone),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, task.ErrOwnerMismatch),
		errors.Is(err, task.ErrMissingName):
		return badRequest(c, err.Error())
	default:
		h.log.Error(action, zap.String("request_id", requestID(c)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: action + ": " + err.Error(),
		})
	}
}

func validationFailed(c *fiber.Ctx, errs []FieldError) error {
	if len(errs) == 1 && errs[0].Field == "" {
		return badRequest(c, errs[0].Message)
	}
	return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{
		Error:   "validation_failed",
		Message: "Request validation failed",
		Errors:  errs,
	})
}

func creatorMismatch(c *fiber.Ctx) error {
	return validationFailed(c, []FieldError{{
		Field:   "CREATED_BY",
		Message: "CREATED_BY must match the authenticated user",
	}})
}

// payloadTask converts a validated payload; the timestamps are known to parse.
func payloadTask(p TaskPayload) domain.Task {
	createdAt, _ := parseTime(p.CreatedAt)
	dueAt, _ := parseTime(p.DueAt)
	return domain.Task{
		CreatedBy:   p.CreatedBy,
		CreatedAt:   createdAt,
		Name:        p.Name,
		Description: p.Description,
		DueAt:       dueAt,
		Done:        *p.Done,
		Category:    domain.Category(p.Category),
	}
}

func invalidTaskID(c *fiber.Ctx) error {
	return badRequest(c, "Invalid task ID")
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}
