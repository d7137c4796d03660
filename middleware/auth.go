// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"cleanup-event-system/models"
	"cleanup-event-system/services"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware turns the identity headers set by the Gateway into
// a local User row. The identity provider owns credentials; this service
// only consumes the authenticated principal. Requests without X-User-ID
// are rejected on secured routes.
func UserContextMiddleware(users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		externalID := c.Get("X-User-ID")
		if externalID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		organizer := false
		for _, r := range strings.Split(c.Get("X-User-Roles"), ",") {
			if strings.EqualFold(strings.TrimSpace(r), string(models.RoleOrganizer)) {
				organizer = true
			}
		}

		user, err := users.EnsureUser(externalID, c.Get("X-User-Email"), c.Get("X-User-Name"), organizer)
		if err != nil {
			log.Printf("❌ [USER_CTX] failed to resolve principal %s: %v", externalID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve user context",
			})
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser pulls the resolved principal out of the request context.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
