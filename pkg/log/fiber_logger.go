package log

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rsvp",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "The latency of the HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"api"})

	httpRequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rsvp",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of the HTTP requests.",
	}, []string{"api", "path", "method", "code"})
)

type LoggerConfig struct {
	Name          string
	DoMetrics     bool
	LogErrorsOnly bool
}

// NewFiberLogger logs one line per request. With LogErrorsOnly, 2xx
// replies go to debug and 4xx/5xx to warn.
func NewFiberLogger(conf *LoggerConfig) fiber.Handler {
	if conf == nil {
		conf = &LoggerConfig{Name: "http"}
	}

	logger := slog.Default().With(slog.String("logger", conf.Name))

	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		wt := time.Since(start)

		if chainErr != nil {
			// let fiber's error handler set the status before it is logged
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()

		if conf.DoMetrics {
			metrics(conf.Name, c, status, wt)
		}

		msg := fmt.Sprintf("%d %s %s", status, c.Method(), c.Path())
		l := logger

		if chainErr != nil {
			l = l.With(slog.Any("error", chainErr))
		}

		attrs := []any{
			slog.String("client", c.IP()),
			slog.Int("status", status),
			slog.Int64("ms", wt.Milliseconds()),
		}

		if !conf.LogErrorsOnly {
			l.Info(msg, attrs...)

			return nil
		}

		switch {
		case status < 300:
			l.Debug(msg, attrs...)
		case status < 400:
			l.Info(msg, attrs...)
		default:
			l.Warn(msg, attrs...)
		}

		return nil
	}
}

func metrics(api string, c *fiber.Ctx, status int, t time.Duration) {
	httpRequestsDuration.With(prometheus.Labels{"api": api}).Observe(t.Seconds())

	httpRequestsCount.With(prometheus.Labels{
		"api":    api,
		"path":   c.Route().Path,
		"method": c.Method(),
		"code":   strconv.Itoa(status),
	}).Inc()
}
