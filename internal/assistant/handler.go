package assistant

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/access"
	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/validation"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/assistants", h.list)
	app.Get("/api/assistants/:id<int>", h.get)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	assistantOnly := access.RequireRole(auth.RoleAssistant)
	app.Get("/api/assistants/me/profile", assistantOnly, h.me)
	app.Put("/api/assistants/me/profile", assistantOnly, h.save)
}

func (h *Handler) list(c *fiber.Ctx) error {
	var f Filter
	if raw := c.Query("locationId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid locationId"})
		}
		f.LocationID = id
	}
	if raw := c.Query("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid available flag"})
		}
		f.Available = &v
	}
	cards, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(cards)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	detail, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(detail)
}

func (h *Handler) me(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	p, err := h.service.Profile(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) save(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if errs := validation.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid fields", "errors": errs})
	}
	p, err := h.service.Save(c.UserContext(), userID, *in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "assistant not found"})
	case errors.Is(err, ErrUnknownLocation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "location does not exist"})
	default:
		h.log.Error("assistant endpoint failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
}
