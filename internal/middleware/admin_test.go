package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAdmin(t *testing.T) {
	newApp := func(ids []string, allowAll bool) *fiber.App {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			if u := c.Get("X-Test-User"); u != "" {
				c.Locals("user_id", u)
			}
			return c.Next()
		})
		app.Post("/admin", RequireAdmin(ids, allowAll), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})
		return app
	}
	status := func(app *fiber.App, user string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/admin", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	listed := newApp([]string{"aad-boss"}, false)
	assert.Equal(t, fiber.StatusNoContent, status(listed, "aad-boss"))
	assert.Equal(t, fiber.StatusForbidden, status(listed, "aad-intern"))
	assert.Equal(t, fiber.StatusUnauthorized, status(listed, ""))

	assert.Equal(t, fiber.StatusNoContent, status(newApp(nil, true), "aad-anyone"))
	assert.Equal(t, fiber.StatusForbidden, status(newApp(nil, false), "aad-anyone"))
}
