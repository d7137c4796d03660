// handlers/reward_routes.go
package handlers

import (
	"cleanup-event-system/middleware"
	"cleanup-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRewardRoutes(app *fiber.App, users *services.UserService, rewards *services.RewardService) {
	// 🔓 Catalog is public
	app.Get("/rewards", func(c *fiber.Ctx) error {
		list, err := rewards.ListRewards()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	app.Get("/rewards/:id", func(c *fiber.Ctx) error {
		reward, err := rewards.GetReward(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(reward)
	})

	secured := app.Group("/", middleware.UserContextMiddleware(users))

	secured.Post("/rewards/:id/redeem", func(c *fiber.Ctx) error {
		redemption, err := rewards.Redeem(middleware.CurrentUser(c).ID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(redemption)
	})

	secured.Get("/user/redemptions", func(c *fiber.Ctx) error {
		list, err := rewards.ListUserRedemptions(middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	// 🔒 Catalog management (organizer-only, checked in the service)
	admin := secured.Group("/admin")

	admin.Post("/rewards", func(c *fiber.Ctx) error {
		var in services.RewardInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		reward, err := rewards.CreateReward(middleware.CurrentUser(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(reward)
	})

	admin.Put("/rewards/:id", func(c *fiber.Ctx) error {
		var in services.RewardInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		reward, err := rewards.UpdateReward(middleware.CurrentUser(c), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(reward)
	})
}
