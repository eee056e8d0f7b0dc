package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// InitMetrics builds the HTTP metrics collector for serviceName. A nil
// registerer registers on the process-wide default registry, which may only
// happen once per process.
func InitMetrics(serviceName string, reg prometheus.Registerer) *fiberprometheus.FiberPrometheus {
	if reg == nil {
		return fiberprometheus.New(serviceName)
	}
	return fiberprometheus.NewWithRegistry(reg, serviceName, "http", "", nil)
}

// MetricsMiddleware records request counts and latencies. Scrapes of the
// metrics endpoint itself are not counted.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return prom.Middleware(c)
	}
}
