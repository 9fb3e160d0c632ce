package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/access"
	"github.com/wichananm65/carehub-backend/internal/auth"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/dashboard/user", access.RequireRole(auth.RoleUser), h.user)
	app.Get("/api/dashboard/assistant", access.RequireRole(auth.RoleAssistant), h.assistant)
}

func (h *Handler) user(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	v, err := h.service.ForUser(c.UserContext(), userID)
	if err != nil {
		h.log.Error("user dashboard failed", zap.Int("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not load dashboard"})
	}
	return c.JSON(v)
}

func (h *Handler) assistant(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	v, err := h.service.ForAssistant(c.UserContext(), userID)
	if err != nil {
		h.log.Error("assistant dashboard failed", zap.Int("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not load dashboard"})
	}
	return c.JSON(v)
}
