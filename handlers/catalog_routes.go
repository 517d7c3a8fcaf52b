// handlers/catalog_routes.go
package handlers

import (
	"quest-portal-system/middleware"
	"quest-portal-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupCatalogRoutes wires the quest and badge catalog: read-only for
// students, full CRUD under /s/admin for admins.
func SetupCatalogRoutes(app *fiber.App, questSvc *services.QuestService, badgeSvc *services.BadgeService, accountSvc *services.AccountService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/quests", func(c *fiber.Ctx) error {
		quests, err := questSvc.ListQuests()
		if err != nil {
			return fail(c, err, "failed to list quests")
		}
		return c.JSON(quests)
	})

	secured.Get("/quests/:id", func(c *fiber.Ctx) error {
		quest, err := questSvc.GetQuest(c.Params("id"))
		if err != nil {
			return fail(c, err, "failed to load quest")
		}
		return c.JSON(quest)
	})

	secured.Get("/badges", func(c *fiber.Ctx) error {
		badges, err := badgeSvc.ListBadges()
		if err != nil {
			return fail(c, err, "failed to list badges")
		}
		return c.JSON(badges)
	})

	secured.Get("/badges/:id", func(c *fiber.Ctx) error {
		badge, err := badgeSvc.GetBadge(c.Params("id"))
		if err != nil {
			return fail(c, err, "failed to load badge")
		}
		return c.JSON(badge)
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.AdminOnlyMiddleware(accountSvc))

	admin.Post("/quests", func(c *fiber.Ctx) error {
		var in services.QuestInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid JSON")
		}
		if err := validate.Struct(in); err != nil {
			return badRequest(c, err.Error())
		}
		quest, err := questSvc.CreateQuest(in)
		if err != nil {
			return fail(c, err, "failed to create quest")
		}
		return c.Status(fiber.StatusCreated).JSON(quest)
	})

	admin.Put("/quests/:id", func(c *fiber.Ctx) error {
		var in services.QuestInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid JSON")
		}
		if err := validate.Struct(in); err != nil {
			return badRequest(c, err.Error())
		}
		quest, err := questSvc.UpdateQuest(c.Params("id"), in)
		if err != nil {
			return fail(c, err, "failed to update quest")
		}
		return c.JSON(quest)
	})

	admin.Delete("/quests/:id", func(c *fiber.Ctx) error {
		if err := questSvc.DeleteQuest(c.Params("id")); err != nil {
			return fail(c, err, "failed to delete quest")
		}
		return c.JSON(fiber.Map{"message": "quest deleted"})
	})

	admin.Post("/badges", func(c *fiber.Ctx) error {
		var in services.BadgeInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid JSON")
		}
		if err := validate.Struct(in); err != nil {
			return badRequest(c, err.Error())
		}
		badge, err := badgeSvc.CreateBadge(in)
		if err != nil {
			return fail(c, err, "failed to create badge")
		}
		return c.Status(fiber.StatusCreated).JSON(badge)
	})

	admin.Put("/badges/:id", func(c *fiber.Ctx) error {
		var in services.BadgeInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid JSON")
		}
		if err := validate.Struct(in); err != nil {
			return badRequest(c, err.Error())
		}
		badge, err := badgeSvc.UpdateBadge(c.Params("id"), in)
		if err != nil {
			return fail(c, err, "failed to update badge")
		}
		return c.JSON(badge)
	})

	admin.Delete("/badges/:id", func(c *fiber.Ctx) error {
		if err := badgeSvc.DeleteBadge(c.Params("id")); err != nil {
			return fail(c, err, "failed to delete badge")
		}
		return c.JSON(fiber.Map{"message": "badge deleted"})
	})
}
