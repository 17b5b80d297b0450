package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rsvp-sheets/rsvp/internal/config"
	"github.com/rsvp-sheets/rsvp/internal/rsvp"
	"github.com/rsvp-sheets/rsvp/pkg/form"
)

func getStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "message": "rsvp endpoint is deployed"})
	}
}

func getMethodNotAllowedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Method not allowed"})
	}
}

func getSubmitHandler(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := app.config.CheckSheets(); err != nil {
			return app.writeError(c, err)
		}

		ctx := c.UserContext()

		if err := app.appender.Authorize(ctx); err != nil {
			return app.writeError(c, err)
		}

		fields, err := form.FromRequest(c, form.Fields)
		if err != nil {
			return app.writeError(c, &rsvp.ValidationError{Msg: "Invalid request body: " + err.Error()})
		}

		sub, err := rsvp.Parse(fields, app.now().In(app.loc))
		if err != nil {
			return app.writeError(c, err)
		}

		rows, err := sub.Rows()
		if err != nil {
			return app.writeError(c, err)
		}

		logger := app.logger.With(slog.String("submission", uuid.NewString()))

		if err := app.appender.Append(ctx, app.target(), rows); err != nil {
			return app.writeError(c, err)
		}

		submissionsMetric.WithLabelValues(resultSuccess).Inc()
		rowsMetric.Add(float64(len(rows)))

		logger.Info(fmt.Sprintf("appended %d rows", len(rows)),
			slog.String("side", string(sub.Side)),
			slog.Int("guests", len(sub.Guests)))

		return c.JSON(fiber.Map{"status": "success", "rowsAppended": len(rows)})
	}
}

// writeError maps validation problems to 400 and everything else to 500.
// Upstream errors are returned as-is to the caller.
func (app *App) writeError(c *fiber.Ctx, err error) error {
	var (
		verr *rsvp.ValidationError
		merr *config.MissingError
	)

	switch {
	case errors.As(err, &verr):
		submissionsMetric.WithLabelValues(resultInvalid).Inc()
		app.logger.Info("rejected: " + verr.Msg)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Msg})
	case errors.As(err, &merr):
		submissionsMetric.WithLabelValues(resultConfig).Inc()
		app.logger.Error(merr.Error())

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": merr.Error()})
	default:
		submissionsMetric.WithLabelValues(resultUpstream).Inc()
		app.logger.Error("rsvp error", slog.Any("error", err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
}
