// handlers/submission_routes.go
package handlers

import (
	"quest-portal-system/middleware"
	"quest-portal-system/models"
	"quest-portal-system/services"
	"quest-portal-system/utils"

	"strconv"

	"github.com/gofiber/fiber/v2"
)

const maxProofSize = 50 * 1024 * 1024 // 50MB

// SetupSubmissionRoutes wires submission intake for students and the review
// queue for admins.
func SetupSubmissionRoutes(app *fiber.App, subSvc *services.SubmissionService, accountSvc *services.AccountService, lbSvc *services.LeaderboardService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// POST /submissions — multipart: quest_id, note (optional), file.
	secured.Post("/submissions", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)

		// first touch may be the submission itself; make sure the account row exists
		if _, err := accountSvc.EnsureAccount(userID, middleware.UserName(c), middleware.UserEmail(c)); err != nil {
			return fail(c, err, "failed to resolve account")
		}

		questID := c.FormValue("quest_id")
		if questID == "" {
			return badRequest(c, "quest_id is required")
		}

		proof, err := c.FormFile("file")
		if err != nil {
			return badRequest(c, "file is required")
		}
		if proof.Size > maxProofSize {
			return badRequest(c, "file too large (max 50MB)")
		}

		key := utils.ProofKey(userID, questID, proof.Filename)
		fileURL, err := utils.UploadFileToR2(proof, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to upload proof file",
				"cause": err.Error(),
			})
		}

		sub, err := subSvc.CreateSubmission(userID, questID, fileURL, proof.Filename, c.FormValue("note"))
		if err != nil {
			return fail(c, err, "failed to create submission")
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	secured.Get("/submissions/mine", func(c *fiber.Ctx) error {
		subs, err := subSvc.ListForUser(middleware.UserID(c))
		if err != nil {
			return fail(c, err, "failed to list submissions")
		}
		return c.JSON(subs)
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.AdminOnlyMiddleware(accountSvc))

	admin.Get("/submissions", func(c *fiber.Ctx) error {
		status := models.SubmissionStatus(c.Query("status", string(models.SubmissionPending)))
		if all := c.Query("status") == "all"; all {
			status = ""
		}
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		items, err := subSvc.ListForReview(status, page, size)
		if err != nil {
			return fail(c, err, "failed to list submissions")
		}
		return c.JSON(items)
	})

	admin.Post("/submissions/:id/approve", func(c *fiber.Ctx) error {
		sub, err := subSvc.Approve(c.Params("id"))
		if err != nil {
			return fail(c, err, "failed to approve submission")
		}
		lbSvc.Invalidate(c.Context())
		return c.JSON(sub)
	})

	admin.Post("/submissions/:id/reject", func(c *fiber.Ctx) error {
		sub, err := subSvc.Reject(c.Params("id"))
		if err != nil {
			return fail(c, err, "failed to reject submission")
		}
		return c.JSON(sub)
	})
}
