package location

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

func NewHandler(s *Service, log *zap.Logger) *Handler {
	return &Handler{service: s, log: log}
}

type createRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Province string `json:"province" validate:"max=100"`
}

type updateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Province *string `json:"province" validate:"omitempty,max=100"`
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/locations", h.list)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	admin := access.RequireRole(auth.RoleAdmin)
	app.Post("/api/locations", admin, h.create)
	app.Patch("/api/locations/:id<int>", admin, h.update)
	app.Delete("/api/locations/:id<int>", admin, h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	locations, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(locations)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(createRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if errs := validation.Struct(payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid fields", "errors": errs})
	}
	l, err := h.service.Create(c.UserContext(), payload.Name, payload.Province)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(l)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if errs := validation.Struct(payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid fields", "errors": errs})
	}
	l, err := h.service.Update(c.UserContext(), id, payload.Name, payload.Province)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(l)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Location deleted"})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "location not found"})
	case errors.Is(err, ErrNameExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "location name already exists"})
	case errors.Is(err, ErrInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "location is used by requests"})
	default:
		h.log.Error("location request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
}
