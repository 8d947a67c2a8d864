package api

import (
	"errors"
	"strings"
	"time"

	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IdentityKey is the Fiber locals key holding the caller's Identity.
const IdentityKey = "identity"

// Identity is the authenticated caller of one request.
type Identity struct {
	Email string
}

// IdentityFrom returns the identity bound by the auth gate.
func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(IdentityKey).(Identity)
	return id, ok && id.Email != ""
}

// identityKey is the rate limit key of an authenticated request.
func identityKey(c *fiber.Ctx) string {
	id, _ := IdentityFrom(c)
	return id.Email
}

// AuthGate authenticates bearer tokens. A request passes only when the token is
// authentic, unexpired and names an existing account.
type AuthGate struct {
	auth auth.AuthPort
	now  func() time.Time
	log  *zap.Logger
}

// NewAuthGate creates an AuthGate backed by authPort.
func NewAuthGate(authPort auth.AuthPort, log *zap.Logger) *AuthGate {
	return &AuthGate{
		auth: authPort,
		now:  time.Now,
		log:  logger.OrNop(log),
	}
}

// Handler returns the gate as Fiber middleware.
func (g *AuthGate) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, "No token provided")
		}

		assertion, err := g.auth.ValidateToken(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				g.log.Warn("token validation failed", zap.Error(err))
			}
			return unauthorized(c, "Failed to authenticate token")
		}

		if assertion.Expired(g.now()) {
			return unauthorized(c, "Token has expired")
		}

		account, err := g.auth.FindAccount(c.UserContext(), assertion.Subject)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return unauthorized(c, "User not found")
			}
			g.log.Error("failed to verify user", zap.String("subject", assertion.Subject), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to verify user: " + err.Error(),
			})
		}

		c.Locals(IdentityKey, Identity{Email: account.Email})
		return c.Next()
	}
}

// bearerToken extracts the token of a "Bearer <token>" header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}
