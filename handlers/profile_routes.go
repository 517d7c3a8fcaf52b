// handlers/profile_routes.go
package handlers

import (
	"quest-portal-system/middleware"
	"quest-portal-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupProfileRoutes wires the self-service profile and dashboard endpoints.
func SetupProfileRoutes(app *fiber.App, progressionSvc *services.ProgressionService, accountSvc *services.AccountService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/me", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if _, err := accountSvc.EnsureAccount(userID, middleware.UserName(c), middleware.UserEmail(c)); err != nil {
			return fail(c, err, "failed to resolve account")
		}
		profile, err := progressionSvc.ProfileFor(userID)
		if err != nil {
			return fail(c, err, "failed to load profile")
		}
		return c.JSON(profile)
	})

	secured.Put("/me", func(c *fiber.Ctx) error {
		var upd services.ProfileUpdate
		if err := c.BodyParser(&upd); err != nil {
			return badRequest(c, "invalid JSON")
		}
		if err := validate.Struct(upd); err != nil {
			return badRequest(c, err.Error())
		}
		user, err := accountSvc.UpdateProfile(middleware.UserID(c), upd)
		if err != nil {
			return fail(c, err, "failed to update profile")
		}
		return c.JSON(user)
	})

	secured.Get("/me/dashboard", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if _, err := accountSvc.EnsureAccount(userID, middleware.UserName(c), middleware.UserEmail(c)); err != nil {
			return fail(c, err, "failed to resolve account")
		}
		stats, err := progressionSvc.DashboardFor(userID)
		if err != nil {
			return fail(c, err, "failed to load dashboard")
		}
		return c.JSON(stats)
	})
}
