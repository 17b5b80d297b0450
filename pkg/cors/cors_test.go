package cors

import (
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestCors(t *testing.T) {
	app := fiber.New()
	app.Use(New("https://example.org"))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("x") })

	for _, d := range []struct {
		method string
		path   string
		code   int
		body   string
	}{
		{"OPTIONS", "/x", fiber.StatusNoContent, ""},
		{"OPTIONS", "/anything/else", fiber.StatusNoContent, ""},
		{"GET", "/x", fiber.StatusOK, "x"},
		{"GET", "/missing", fiber.StatusNotFound, "Cannot GET /missing"},
	} {
		t.Run(d.method+d.path, func(t *testing.T) {
			req, err := http.NewRequest(d.method, d.path, nil)
			require.NoError(t, err)

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, d.code, resp.StatusCode)

			b, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, d.body, string(b))

			require.Equal(t, "https://example.org", resp.Header.Get("Access-Control-Allow-Origin"))
			require.Equal(t, "GET,POST,OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
			require.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
		})
	}
}
