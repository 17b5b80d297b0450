package log

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMetricsAPI is served on its own address so the main listener keeps
// every path for the application.
func NewMetricsAPI() *fiber.App {
	f := fiber.New(fiber.Config{EnablePrintRoutes: false, DisableStartupMessage: true})
	f.Get("/metrics", getMetricsHandler())

	return f
}

func getMetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{DisableCompression: true},
	))
}
