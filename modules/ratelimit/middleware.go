package ratelimit

import (
	"fmt"
	"strconv"

	"github.com/example/task-tracker/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// KeyFunc extracts the rate limit key of a request. An empty key falls back to the client IP.
type KeyFunc func(c *fiber.Ctx) string

// Middleware applies limiters to Fiber routes. Limiter errors fail open.
type Middleware struct {
	ipLimiter       Limiter
	identityLimiter Limiter
	log             *zap.Logger
}

// NewMiddleware creates middleware limiting by client IP and by caller identity.
func NewMiddleware(ipLimiter, identityLimiter Limiter, log *zap.Logger) *Middleware {
	return &Middleware{
		ipLimiter:       ipLimiter,
		identityLimiter: identityLimiter,
		log:             logger.OrNop(log),
	}
}

// IPRateLimit returns middleware that limits requests by client IP.
func (m *Middleware) IPRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return m.limit(c, m.ipLimiter, "ip:"+c.IP())
	}
}

// IdentityRateLimit returns middleware that limits requests by the key returned from key,
// or by client IP when key yields nothing.
func (m *Middleware) IdentityRateLimit(key KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		k := key(c)
		if k == "" {
			return m.limit(c, m.identityLimiter, "ip:"+c.IP())
		}
		return m.limit(c, m.identityLimiter, "user:"+k)
	}
}

func (m *Middleware) limit(c *fiber.Ctx, limiter Limiter, key string) error {
	result, err := limiter.Allow(c.UserContext(), key)
	if err != nil {
		m.log.Warn("rate limiter unavailable, allowing request",
			zap.String("key", key),
			zap.Error(err))
		return c.Next()
	}

	setRateLimitHeaders(c, result, limiter.Limit())

	if !result.Allowed {
		return sendRateLimitExceeded(c, result)
	}
	return c.Next()
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(c *fiber.Ctx, result *Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// sendRateLimitExceeded sends a 429 Too Many Requests response.
func sendRateLimitExceeded(c *fiber.Ctx, result *Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "rate_limited",
		"message":     fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter),
		"retry_after": retryAfter,
	})
}
