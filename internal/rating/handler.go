package rating

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/request"
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
	app.Get("/api/assistants/:id<int>/ratings", h.list)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/requests/:id<int>/rating", h.rate)
}

func (h *Handler) rate(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	requestID, _ := strconv.Atoi(c.Params("id"))

	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if errs := validation.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid fields", "errors": errs})
	}

	created, err := h.service.Rate(c.UserContext(), caller, requestID, *in)
	if err != nil {
		switch {
		case errors.Is(err, request.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "request not found"})
		case errors.Is(err, ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
		case errors.Is(err, ErrNotRatable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "request is not completed"})
		case errors.Is(err, ErrAlreadyRated):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "request already rated"})
		default:
			h.log.Error("rate request", zap.Int("request_id", requestID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) list(c *fiber.Ctx) error {
	assistantID, _ := strconv.Atoi(c.Params("id"))
	ratings, err := h.service.ForAssistant(c.UserContext(), assistantID, c.QueryInt("limit", 0))
	if err != nil {
		h.log.Error("list ratings", zap.Int("assistant_id", assistantID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
	summary, err := h.service.Summary(c.UserContext(), assistantID)
	if err != nil {
		h.log.Error("rating summary", zap.Int("assistant_id", assistantID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
	return c.JSON(fiber.Map{"summary": summary, "ratings": ratings})
}
