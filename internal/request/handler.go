package request

import (
	"errors"
	"strconv"
	"strings"

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
	app.Get("/api/requests", h.list)
	app.Get("/api/requests/:id<int>", h.get)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/requests", access.RequireRole(auth.RoleUser), h.create)
	app.Patch("/api/requests/:id<int>", h.update)
	app.Delete("/api/requests/:id<int>", h.cancel)
	app.Post("/api/requests/:id<int>/complete", h.complete)
	app.Get("/api/users/me/requests", h.mine)
}

func (h *Handler) list(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	items, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(items)
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	f := Filter{
		Status:   StatusOpen,
		CareType: strings.TrimSpace(c.Query("careType")),
		Query:    c.Query("q"),
		Limit:    c.QueryInt("limit", defaultLimit),
		Offset:   c.QueryInt("offset", 0),
	}
	switch s := strings.ToLower(strings.TrimSpace(c.Query("status"))); s {
	case "":
	case "all":
		f.Status = ""
	default:
		if !Status(s).Valid() {
			return Filter{}, errors.New("invalid status")
		}
		f.Status = Status(s)
	}
	if raw := c.Query("locationId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return Filter{}, errors.New("invalid locationId")
		}
		f.LocationID = id
	}
	if f.CareType != "" && !validCareType(f.CareType) {
		return Filter{}, errors.New("invalid careType")
	}
	return f, nil
}

func validCareType(t string) bool {
	for _, ct := range CareTypes {
		if ct == t {
			return true
		}
	}
	return false
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) create(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	in, resp := bind[Input](c)
	if resp != nil {
		return resp()
	}
	created, err := h.service.Create(c.UserContext(), caller.UserID, *in)
	if err != nil {
		return h.fail(c, err)
	}
	h.log.Info("request created", zap.Int("request_id", created.ID), zap.Int("user_id", caller.UserID))
	return c.Status(fiber.StatusCreated).JSON(newListing(created))
}

// bind parses and validates the body, returning a responder on failure.
func bind[T any](c *fiber.Ctx) (*T, func() error) {
	in := new(T)
	if err := c.BodyParser(in); err != nil {
		return nil, func() error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
		}
	}
	if errs := validation.Struct(in); errs != nil {
		return nil, func() error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid fields", "errors": errs})
		}
	}
	return in, nil
}

func (h *Handler) update(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	in, resp := bind[Patch](c)
	if resp != nil {
		return resp()
	}
	updated, err := h.service.Update(c.UserContext(), caller, id, *in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(newListing(updated))
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	req, err := h.service.Cancel(c.UserContext(), caller, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(newListing(req))
}

func (h *Handler) complete(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))
	req, err := h.service.Complete(c.UserContext(), caller, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(newListing(req))
}

func (h *Handler) mine(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	items, err := h.service.Mine(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "request not found"})
	case errors.Is(err, ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	case errors.Is(err, ErrStatusConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "request status does not allow this change"})
	case errors.Is(err, ErrUnknownLocation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "location does not exist"})
	case errors.Is(err, ErrEmptyField):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		h.log.Error("request endpoint failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
}
