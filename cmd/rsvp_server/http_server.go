package main

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rsvp-sheets/rsvp/pkg/cors"
	"github.com/rsvp-sheets/rsvp/pkg/log"
)

// NewRsvpAPI serves the same contract on every path: OPTIONS is the CORS
// preflight, GET the liveness check and POST the submission.
func NewRsvpAPI(app *App) *fiber.App {
	f := fiber.New(fiber.Config{EnablePrintRoutes: false, DisableStartupMessage: true})

	f.Use(log.NewFiberLogger(&log.LoggerConfig{Name: "rsvp_api", DoMetrics: true, LogErrorsOnly: app.config.LogErrorsOnly()}))
	f.Use(cors.New(app.config.AllowedOrigin()))

	f.Get("/*", getStatusHandler())
	f.Post("/*", getSubmitHandler(app))
	f.Use(getMethodNotAllowedHandler())

	return f
}
