// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the identity the Gateway forwards with each
// authenticated request and attaches it to the fiber context. Requests with
// no X-User-ID are rejected; every route in this service is user-scoped.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID missing on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		for _, r := range strings.Split(c.Get("X-User-Roles"), ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}

		c.Locals("user_id", userID)
		c.Locals("user_name", c.Get("X-User-Name"))
		c.Locals("user_email", c.Get("X-User-Email"))
		c.Locals("user_roles", roles)

		return c.Next()
	}
}

// UserID reads the identity set by UserContextMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// UserName reads the gateway-forwarded display name, if any.
func UserName(c *fiber.Ctx) string {
	name, _ := c.Locals("user_name").(string)
	return name
}

// UserEmail reads the gateway-forwarded email, if any.
func UserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("user_email").(string)
	return email
}
