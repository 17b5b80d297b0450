// Package cors sets fixed CORS headers on every response and answers
// preflight requests.
package cors

import (
	"github.com/gofiber/fiber/v2"
)

const (
	AllowMethods = "GET,POST,OPTIONS"
	AllowHeaders = "Content-Type"
)

// New returns a handler that stamps origin on every response, whether or
// not the request carried an Origin header, and ends OPTIONS requests with
// 204 and no body.
func New(origin string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderAccessControlAllowMethods, AllowMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, AllowHeaders)

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
