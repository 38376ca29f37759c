// Package ratelimit wraps Fiber's limiter with the service's JSON 429 response.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/hollyabrams/express-jobly/internal/pkg/log"
)

// Config holds the configuration for rate limiting middleware
type Config struct {
	// Name appears in the log line and the 429 message
	Name string

	// Max requests per window. Defaults to 60.
	Max int

	// Window length. Defaults to one minute.
	Expiration time.Duration

	// Next defines a function to skip this middleware when returned true
	Next func(c *fiber.Ctx) bool

	// Custom key generator (optional - uses default IP-based if not provided)
	KeyGenerator func(c *fiber.Ctx) string

	// LimitReached defines the response when rate limit is exceeded
	LimitReached func(c *fiber.Ctx) error
}

// configDefault sets default configuration values
func configDefault(config Config) Config {
	if config.Name == "" {
		config.Name = "request"
	}
	if config.Max <= 0 {
		config.Max = 60
	}
	if config.Expiration <= 0 {
		config.Expiration = time.Minute
	}

	if config.KeyGenerator == nil {
		config.KeyGenerator = func(c *fiber.Ctx) string {
			return c.IP()
		}
	}

	if config.LimitReached == nil {
		name := config.Name
		window := config.Expiration
		config.LimitReached = func(c *fiber.Ctx) error {
			log.Warn("[RateLimit] Rate limit exceeded for %s from IP: %s", name, c.IP())

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":       "RATE_LIMIT_EXCEEDED",
				"message":    fmt.Sprintf("Too many %s attempts. Please try again later.", name),
				"retryAfter": int(window.Seconds()),
			})
		}
	}

	return config
}

// New creates a new rate limiting middleware handler
func New(config Config) fiber.Handler {
	cfg := configDefault(config)

	return limiter.New(limiter.Config{
		Max:          cfg.Max,
		Expiration:   cfg.Expiration,
		KeyGenerator: cfg.KeyGenerator,
		LimitReached: cfg.LimitReached,
		Next:         cfg.Next,
	})
}

// NewMutationLimiter limits write requests per client IP. Safe methods pass through.
func NewMutationLimiter(max int, window time.Duration) fiber.Handler {
	return New(Config{
		Name:       "write",
		Max:        max,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			switch c.Method() {
			case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
				return true
			}
			return false
		},
	})
}
