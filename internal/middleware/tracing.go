package middleware

import (
	"mooderia/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceHeader carries the trace id back to the caller.
const TraceHeader = "X-Trace-ID"

// TracingMiddleware opens one server span per request, continuing an
// incoming W3C trace when the caller sent one. The trace id is stored under
// LocalTraceID so ContextMiddleware can hand it to the logger.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		parent := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(parent, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(requestAttributes(c)...),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals(LocalTraceID, traceID)
		c.Set(TraceHeader, traceID)
		c.SetUserContext(ctx)

		err := c.Next()
		finishSpan(c, span, err)
		return err
	}
}

func requestAttributes(c *fiber.Ctx) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", c.Method()),
		attribute.String("http.path", c.Path()),
		attribute.String("http.url", c.OriginalURL()),
		attribute.String("http.ip", c.IP()),
	}
	if rid, ok := c.Locals(LocalRequestID).(string); ok && rid != "" {
		attrs = append(attrs, attribute.String("request.id", rid))
	}
	return attrs
}

// finishSpan records the outcome. The username is only known after
// AuthRequired ran further down the chain.
func finishSpan(c *fiber.Ctx, span trace.Span, err error) {
	status := c.Response().StatusCode()
	span.SetAttributes(attribute.Int("http.status_code", status))
	if user, ok := c.Locals(LocalUsername).(string); ok && user != "" {
		span.SetAttributes(attribute.String("user.username", user))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= fiber.StatusInternalServerError:
		span.SetStatus(codes.Error, "server error")
	}
}
