// middleware/admin.go
package middleware

import (
	"log"

	"quest-portal-system/services"

	"github.com/gofiber/fiber/v2"
)

// AdminOnlyMiddleware gates a route group on the stored admin flag. The flag
// was fixed at account creation from the email domain; gateway roles are not
// trusted for this decision.
func AdminOnlyMiddleware(accounts *services.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		user, err := accounts.GetByExternalID(userID)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin privileges required",
			})
		}
		if !user.IsAdmin {
			log.Printf("🚫 [ADMIN] Non-admin %s hit %s", userID, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin privileges required",
			})
		}
		return c.Next()
	}
}
