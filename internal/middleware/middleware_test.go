package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mooderia/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestContextMiddleware_PropagatesLocals(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalUsername, "ada")
		c.Locals(LocalTraceID, "trace-1")
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		return c.JSON(fiber.Map{
			"request": observability.ExtractRequestID(ctx),
			"user":    ctx.Value(observability.UsernameKey),
			"trace":   ctx.Value(observability.TraceIDKey),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]string
	require.NoError(t, decode(resp, &body))
	assert.Equal(t, "req-42", body["request"])
	assert.Equal(t, "ada", body["user"])
	assert.Equal(t, "trace-1", body["trace"])
}

func TestStructuredLogger_WritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	prev := observability.GlobalLogger
	observability.InitLogger("test", &buf)
	t.Cleanup(func() { observability.GlobalLogger = prev })

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/api/posts", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("X-Request-ID", "req-7")
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	line := buf.String()
	assert.Contains(t, line, "request processed")
	assert.Contains(t, line, "status=418")
	assert.Contains(t, line, "path=/api/posts")
	assert.Contains(t, line, "request_id=req-7")
}

func TestTracingMiddleware_SetsTraceHeader(t *testing.T) {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := c.Locals(LocalTraceID).(string)
		assert.True(t, ok)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Len(t, resp.Header.Get(TraceHeader), 32)
}

func TestTracingMiddleware_RecordsOutcome(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(TracingMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		SetUsername(c, "ana")
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /boom", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, resp.Header.Get(TraceHeader), span.SpanContext().TraceID().String())

	attrs := map[string]string{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "req-42", attrs["request.id"])
	assert.Equal(t, "ana", attrs["user.username"])
	assert.Equal(t, "500", attrs["http.status_code"])
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom := InitMetrics("mooderia-test", reg)

	app := fiber.New()
	app.Use(MetricsMiddleware(prom))
	app.Get("/api/posts", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.True(t, strings.Contains(strings.Join(names, ","), "requests_total"))
}
