package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin admits only callers whose user_id is listed. With an empty
// list and allowAllWhenEmpty set, every authenticated caller is admitted.
func RequireAdmin(identities []string, allowAllWhenEmpty bool) fiber.Handler {
	allowed := make(map[string]struct{}, len(identities))
	for _, id := range identities {
		allowed[id] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing user")
		}
		if len(allowed) == 0 && allowAllWhenEmpty {
			return c.Next()
		}
		if _, ok := allowed[uid]; !ok {
			return fiber.NewError(http.StatusForbidden, "admin only")
		}
		return c.Next()
	}
}
