package access

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/auth"
)

type Handler struct {
	tokens  TokenParser
	revoked auth.Revocations
}

func NewHandler(tokens TokenParser, revoked auth.Revocations) *Handler {
	return &Handler{tokens: tokens, revoked: revoked}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/access/resolve", h.resolve)
}

// resolve lets the front end ask where a navigation should end up.
func (h *Handler) resolve(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "path is required"})
	}
	role := CallerRole(c, h.tokens, h.revoked)
	target, redirect := Resolve(path, role)
	return c.JSON(fiber.Map{"redirect": redirect, "location": target, "role": role})
}
