// handlers/leaderboard_routes.go
package handlers

import (
	"strconv"

	"quest-portal-system/middleware"
	"quest-portal-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupLeaderboardRoutes wires the points leaderboard.
func SetupLeaderboardRoutes(app *fiber.App, lbSvc *services.LeaderboardService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		entries, err := lbSvc.Top(c.Context(), limit)
		if err != nil {
			return fail(c, err, "failed to load leaderboard")
		}
		return c.JSON(entries)
	})

	secured.Get("/leaderboard/me", func(c *fiber.Ctx) error {
		rank, err := lbSvc.RankFor(c.Context(), middleware.UserID(c))
		if err != nil {
			return fail(c, err, "failed to load rank")
		}
		return c.JSON(rank)
	})
}
