package application

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/access"
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

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	assistantOnly := access.RequireRole(auth.RoleAssistant)

	app.Post("/api/requests/:id<int>/applications", assistantOnly, h.apply)
	app.Get("/api/requests/:id<int>/applications", h.listForRequest)
	app.Post("/api/applications/:id<int>/accept", h.accept)
	app.Post("/api/applications/:id<int>/reject", h.reject)
	app.Post("/api/applications/:id<int>/withdraw", assistantOnly, h.withdraw)
	app.Get("/api/assistants/me/applications", assistantOnly, h.mine)
}

func (h *Handler) apply(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	requestID, _ := strconv.Atoi(c.Params("id"))

	in := new(Input)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
		}
	}
	if errs := validation.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid fields", "errors": errs})
	}

	created, err := h.service.Apply(c.UserContext(), caller.UserID, requestID, *in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) listForRequest(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	requestID, _ := strconv.Atoi(c.Params("id"))
	offers, err := h.service.ListForRequest(c.UserContext(), caller, requestID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(offers)
}

func (h *Handler) accept(c *fiber.Ctx) error {
	return h.decide(c, h.service.Accept)
}

func (h *Handler) reject(c *fiber.Ctx) error {
	return h.decide(c, h.service.Reject)
}

func (h *Handler) withdraw(c *fiber.Ctx) error {
	return h.decide(c, h.service.Withdraw)
}

func (h *Handler) decide(c *fiber.Ctx, op func(ctx context.Context, caller auth.Identity, id int) (Application, error)) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	a, err := op(c.UserContext(), caller, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(a)
}

func (h *Handler) mine(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	subs, err := h.service.Mine(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(subs)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "application not found"})
	case errors.Is(err, request.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "request not found"})
	case errors.Is(err, ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	case errors.Is(err, ErrAlreadyApplied):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "already applied to this request"})
	case errors.Is(err, ErrRequestNotOpen):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "request is not open"})
	case errors.Is(err, ErrNotPending):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "application is no longer pending"})
	default:
		h.log.Error("application endpoint failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
}
