package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber. A nil gatherer
// serves the default registry, which also carries the collectors of pkg/ai.
func MetricsHandler(gatherer prometheus.Gatherer) fiber.Handler {
	RegisterMetrics()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
