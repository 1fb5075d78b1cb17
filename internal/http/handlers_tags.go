package http

import (
	"github.com/gofiber/fiber/v2"

	"recipebox/internal/model"
)

// listTagsHandler implements GET /v1/tags, the controlled vocabulary in
// prompt order.
func listTagsHandler(c *fiber.Ctx) error {
	out := make([]TagResponse, 0, len(model.Tags))
	for _, t := range model.Tags {
		out = append(out, TagResponse{Key: t.Key, Emoji: t.Emoji, Category: string(t.Category)})
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}
