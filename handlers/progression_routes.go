// handlers/progression_routes.go
package handlers

import (
	"strconv"

	"cleanup-event-system/middleware"
	"cleanup-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(
	app *fiber.App,
	users *services.UserService,
	progression *services.ProgressionService,
	badges *services.BadgeService,
	leaderboard *services.LeaderboardService,
) {
	secured := app.Group("/", middleware.UserContextMiddleware(users))

	secured.Get("/user/progress", func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)

		agg, err := progression.GetUserXP(user.ID)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{
			"user_id":                   user.ID,
			"username":                  user.Username,
			"total_xp":                  agg.TotalXP,
			"level":                     agg.CurrentLevel,
			"xp_into_level":             services.XPIntoLevel(agg.TotalXP),
			"xp_to_next_level":          services.XPToNextLevel(agg.TotalXP),
			"current_streak":            agg.CurrentStreak,
			"longest_streak":            agg.LongestStreak,
			"total_events_participated": agg.TotalEventsParticipated,
			"total_waste_collected":     agg.TotalWasteCollected,
			"last_participated":         agg.LastParticipated,
		})
	})

	secured.Put("/user/profile", func(c *fiber.Ctx) error {
		var req struct {
			FirstName *string `json:"first_name" validate:"omitempty,max=100"`
			LastName  *string `json:"last_name" validate:"omitempty,max=100"`
			AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
		}
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		user, err := users.UpdateProfile(middleware.CurrentUser(c).ID, req.FirstName, req.LastName, req.AvatarURL)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(user)
	})

	secured.Get("/user/progress/history", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		offset, _ := strconv.Atoi(c.Query("offset", "0"))

		entries, total, err := progression.GetHistory(middleware.CurrentUser(c).ID, limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"entries":     entries,
			"total_count": total,
			"limit":       limit,
			"offset":      offset,
		})
	})

	secured.Get("/user/badges", func(c *fiber.Ctx) error {
		earned, err := badges.ListUserBadges(middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(earned)
	})

	// Explicit re-check, e.g. after the catalog grew. Returns only what
	// this call granted — running it twice back-to-back returns [].
	secured.Post("/user/badges/recheck", func(c *fiber.Ctx) error {
		newBadges, err := badges.Recheck(middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"new_badges": newBadges})
	})

	secured.Get("/leaderboard", func(c *fiber.Ctx) error {
		period, err := services.ParsePeriod(c.Query("period", "all-time"))
		if err != nil {
			return respondError(c, err)
		}
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		offset, _ := strconv.Atoi(c.Query("offset", "0"))

		page, err := leaderboard.GetLeaderboard(period, limit, offset, middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(page)
	})

	secured.Get("/leaderboard/me", func(c *fiber.Ctx) error {
		period, err := services.ParsePeriod(c.Query("period", "all-time"))
		if err != nil {
			return respondError(c, err)
		}
		entry, err := leaderboard.GetUserRank(period, middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entry)
	})
}
