// handlers/upload_routes.go
package handlers

import (
	"fmt"
	"path/filepath"

	"cleanup-event-system/middleware"
	"cleanup-event-system/services"
	"cleanup-event-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SetupUploadRoutes accepts multipart evidence photos ahead of a
// participation submission and returns their URLs. The core only ever
// stores the opaque URL strings; storage goes to R2 when configured,
// local disk otherwise.
func SetupUploadRoutes(app *fiber.App, users *services.UserService) {
	secured := app.Group("/", middleware.UserContextMiddleware(users))

	secured.Post("/uploads/evidence", func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expected multipart form"})
		}

		files := form.File["photos"]
		if len(files) == 0 || len(files) > 10 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "between 1 and 10 photos required"})
		}

		urls := make([]string, 0, len(files))
		for _, fh := range files {
			ext := filepath.Ext(fh.Filename)
			if ext == "" {
				ext = ".jpg"
			}
			name := uuid.NewString() + ext

			if utils.R2Enabled() {
				url, err := utils.UploadFileToR2(fh, "evidence/"+name)
				if err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload photo"})
				}
				urls = append(urls, url)
				continue
			}

			dest := utils.UploadPath(filepath.Join("evidence", name))
			if err := utils.SaveFile(fh, dest); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store photo"})
			}
			urls = append(urls, fmt.Sprintf("%s/uploads/evidence/%s", c.BaseURL(), name))
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"photo_urls": urls})
	})
}
