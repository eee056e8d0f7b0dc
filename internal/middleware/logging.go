// Package middleware provides request context, logging, tracing, metrics and
// rate limiting middleware for the HTTP surface.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"mooderia/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals written by the middleware chain.
const (
	LocalRequestID = "requestid"
	LocalUsername  = "username"
	LocalTraceID   = "traceID"
)

// ContextMiddleware copies request id, trace id and acting username from Fiber
// locals into the request context so the context-aware logger picks them up
// in the service layer.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(withLocals(c))
		return c.Next()
	}
}

func withLocals(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if rid, ok := c.Locals(LocalRequestID).(string); ok && rid != "" {
		ctx = context.WithValue(ctx, observability.RequestIDKey, rid)
	}
	if user, ok := c.Locals(LocalUsername).(string); ok && user != "" {
		ctx = context.WithValue(ctx, observability.UsernameKey, user)
	}
	if tid, ok := c.Locals(LocalTraceID).(string); ok && tid != "" {
		ctx = context.WithValue(ctx, observability.TraceIDKey, tid)
	}
	return ctx
}

// SetUsername records the acting username on the request, both in locals and
// in the user context.
func SetUsername(c *fiber.Ctx, username string) {
	c.Locals(LocalUsername, username)
	c.SetUserContext(observability.WithUsername(c.UserContext(), username))
}

// StructuredLogger returns a Fiber middleware for logging requests using slog
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		fields := []any{
			slog.Int("status", c.Response().StatusCode()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get("User-Agent")),
		}

		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			observability.GlobalLogger.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			observability.GlobalLogger.InfoContext(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}
