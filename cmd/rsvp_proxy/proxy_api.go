package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/rsvp-sheets/rsvp/pkg/cors"
	"github.com/rsvp-sheets/rsvp/pkg/form"
	"github.com/rsvp-sheets/rsvp/pkg/log"
	"github.com/rsvp-sheets/rsvp/pkg/request"
)

// Forwarder posts a form body to url and returns whatever came back.
type Forwarder interface {
	Forward(ctx context.Context, url string, body form.Pairs) (*request.Response, error)
}

type httpForwarder struct {
	client *http.Client
	logger *slog.Logger
}

func NewHTTPForwarder(client *http.Client, logger *slog.Logger) Forwarder {
	return &httpForwarder{client: client, logger: logger.With(slog.String("logger", "forward"))}
}

func (f *httpForwarder) Forward(ctx context.Context, url string, body form.Pairs) (*request.Response, error) {
	return request.New(f.client, f.logger).
		URL(url).
		Post().
		Headers(map[string]string{fiber.HeaderContentType: form.ContentType}).
		Body(bytes.NewBufferString(body.Encode())).
		AnyStatus().
		Fetch(ctx)
}

func NewProxyAPI(app *App) *fiber.App {
	f := fiber.New(fiber.Config{EnablePrintRoutes: false, DisableStartupMessage: true})

	f.Use(log.NewFiberLogger(&log.LoggerConfig{Name: "proxy_api", DoMetrics: true, LogErrorsOnly: app.config.LogErrorsOnly()}))
	f.Use(cors.New(app.config.ProxyOrigin()))

	f.Post("/rsvp", getForwardHandler(app))

	return f
}

func getForwardHandler(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := form.FromRequest(c, form.Relay)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		res, err := app.forwarder.Forward(c.UserContext(), app.config.ScriptURL(), body)
		if err != nil {
			forwardsMetric.WithLabelValues("error").Inc()
			app.logger.Error("forward failed", slog.Any("error", err))

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		forwardsMetric.WithLabelValues(strconv.Itoa(res.StatusCode)).Inc()

		ct := res.ContentType
		if ct == "" {
			ct = fiber.MIMETextPlain
		}

		c.Set(fiber.HeaderContentType, ct)

		return c.Status(res.StatusCode).Send(res.Body)
	}
}
