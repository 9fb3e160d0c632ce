package report

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/access"
	"github.com/wichananm65/carehub-backend/internal/auth"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	source Source
	log    *zap.Logger
}

func NewHandler(source Source, log *zap.Logger) *Handler {
	return &Handler{source: source, log: log}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/admin/reports/requests.xlsx", access.RequireRole(auth.RoleAdmin), h.requests)
}

func (h *Handler) requests(c *fiber.Ctx) error {
	rows, err := h.source.RequestRows(c.UserContext())
	if err != nil {
		h.log.Error("load request report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not build report"})
	}
	data, err := RequestsWorkbook(rows)
	if err != nil {
		h.log.Error("render request report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not build report"})
	}
	c.Attachment("requests.xlsx")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(data)
}
