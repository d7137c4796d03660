// handlers/event_routes.go
package handlers

import (
	"strconv"

	"cleanup-event-system/middleware"
	"cleanup-event-system/models"
	"cleanup-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(
	app *fiber.App,
	users *services.UserService,
	events *services.EventService,
	registrations *services.RegistrationService,
	participations *services.ParticipationService,
) {
	// 🔓 Public routes — browseable without user context, still behind
	// gateway auth
	app.Get("/events", func(c *fiber.Ctx) error {
		status := models.EventStatus(c.Query("status"))
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		offset, _ := strconv.Atoi(c.Query("offset", "0"))

		list, total, err := events.ListEvents(status, limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"events":      list,
			"total_count": total,
			"limit":       limit,
			"offset":      offset,
		})
	})

	app.Get("/events/slug/:slug", func(c *fiber.Ctx) error {
		event, err := events.GetEventBySlug(c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	})

	app.Get("/events/:id", func(c *fiber.Ctx) error {
		event, err := events.GetEvent(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	})

	// 🔐 Secured routes — require the gateway-supplied principal
	secured := app.Group("/", middleware.UserContextMiddleware(users))

	secured.Post("/events", func(c *fiber.Ctx) error {
		var in services.EventInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		event, err := events.CreateEvent(middleware.CurrentUser(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(event)
	})

	secured.Get("/events/mine/created", func(c *fiber.Ctx) error {
		list, err := events.ListEventsByCreator(middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	secured.Put("/events/:id", func(c *fiber.Ctx) error {
		var in services.EventInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		event, err := events.UpdateEvent(c.Params("id"), middleware.CurrentUser(c).ID, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	})

	secured.Delete("/events/:id", func(c *fiber.Ctx) error {
		if err := events.DeleteEvent(c.Params("id"), middleware.CurrentUser(c).ID); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "event deleted"})
	})

	// Status transitions — creator-only, never time-triggered
	secured.Post("/events/:id/start", func(c *fiber.Ctx) error {
		event, err := events.StartEvent(c.Params("id"), middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	})

	secured.Post("/events/:id/end", func(c *fiber.Ctx) error {
		event, err := events.EndEvent(c.Params("id"), middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	})

	secured.Post("/events/:id/cancel", func(c *fiber.Ctx) error {
		event, err := events.CancelEvent(c.Params("id"), middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	})

	secured.Post("/events/:id/join-code/rotate", func(c *fiber.Ctx) error {
		event, err := events.RegenerateJoinCode(c.Params("id"), middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	})

	// Registration workflow
	secured.Post("/events/:id/register", func(c *fiber.Ctx) error {
		reg, err := registrations.Register(middleware.CurrentUser(c).ID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(reg)
	})

	secured.Delete("/events/:id/register", func(c *fiber.Ctx) error {
		if err := registrations.Unregister(middleware.CurrentUser(c).ID, c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "unregistered"})
	})

	secured.Post("/events/:id/checkin", func(c *fiber.Ctx) error {
		result, err := registrations.CheckIn(middleware.CurrentUser(c).ID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Post("/checkin", func(c *fiber.Ctx) error {
		var req struct {
			JoinCode string `json:"join_code" validate:"required,len=6"`
		}
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		result, err := registrations.CheckInByCode(middleware.CurrentUser(c).ID, req.JoinCode)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Get("/events/:id/registration", func(c *fiber.Ctx) error {
		reg, err := registrations.GetRegistration(middleware.CurrentUser(c).ID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(reg)
	})

	secured.Get("/events/mine/registrations", func(c *fiber.Ctx) error {
		regs, err := registrations.ListUserRegistrations(middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(regs)
	})

	secured.Get("/events/:id/attendees", func(c *fiber.Ctx) error {
		regs, err := registrations.ListEventAttendees(c.Params("id"), middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(regs)
	})

	// Participation workflow
	secured.Post("/events/:id/participation", func(c *fiber.Ctx) error {
		var in services.ParticipationInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		result, err := participations.Submit(middleware.CurrentUser(c).ID, c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	})

	secured.Get("/events/:id/participation", func(c *fiber.Ctx) error {
		part, err := participations.GetUserParticipation(middleware.CurrentUser(c).ID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(part)
	})

	secured.Get("/events/:id/participations", func(c *fiber.Ctx) error {
		parts, err := participations.ListEventParticipations(c.Params("id"), middleware.CurrentUser(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(parts)
	})

	secured.Post("/participations/:id/verify", func(c *fiber.Ctx) error {
		var req struct {
			IsVerified bool  `json:"is_verified"`
			BonusXP    int64 `json:"bonus_xp" validate:"gte=0,lte=100"`
		}
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		part, err := participations.Verify(c.Params("id"), middleware.CurrentUser(c).ID, req.IsVerified, req.BonusXP)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(part)
	})
}
