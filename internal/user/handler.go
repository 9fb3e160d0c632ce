package user

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/access"
	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/storage"
	"github.com/wichananm65/carehub-backend/internal/validation"
	"go.uber.org/zap"
)

// Revoker ends a session before its token expires.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type Handler struct {
	service *Service
	issuer  *auth.Issuer
	revoker Revoker
	store   storage.Store
	log     *zap.Logger
}

func NewHandler(service *Service, issuer *auth.Issuer, revoker Revoker, store storage.Store, log *zap.Logger) *Handler {
	return &Handler{service: service, issuer: issuer, revoker: revoker, store: store, log: log}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,max=30"`
	Role      string `json:"role" validate:"omitempty,oneof=user assistant"`
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/auth/sign-up", h.register)
	app.Post("/api/auth/sign-in", h.login)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/auth/sign-out", h.logout)

	app.Get("/api/users/profile", h.getProfile)
	app.Patch("/api/users/profile", h.updateProfile)
	app.Post("/api/users/profile/avatar", h.uploadAvatar)
	app.Delete("/api/users/profile/avatar", h.removeAvatar)

	admin := access.RequireRole(auth.RoleAdmin)
	app.Get("/api/users", admin, h.getUsers)
	app.Get("/api/users/:id<int>", admin, h.getUser)
	app.Delete("/api/users/:id<int>", admin, h.deleteUser)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if errs := validation.Struct(payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing or invalid fields", "errors": errs})
	}

	created, err := h.service.Register(c.UserContext(), User{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Phone:     strings.TrimSpace(payload.Phone),
		Role:      auth.Role(payload.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "email already exists"})
		case errors.Is(err, ErrInvalidRole):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid role"})
		default:
			h.log.Error("register user", zap.String("email", payload.Email), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not create account"})
		}
	}

	h.log.Info("user registered", zap.Int("user_id", created.ID), zap.String("role", string(created.Role)))
	return c.Status(fiber.StatusCreated).JSON(sanitizeUser(created))
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if errs := validation.Struct(payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email and password are required", "errors": errs})
	}

	u, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}

	signed, id, err := h.issuer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		h.log.Error("issue token", zap.Int("user_id", u.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  id.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    sanitizeUser(u),
		"token":   signed,
	})
}

func (h *Handler) logout(c *fiber.Ctx) error {
	id, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if h.revoker != nil {
		if err := h.revoker.Revoke(c.UserContext(), id.TokenID, id.ExpiresAt); err != nil {
			h.log.Error("revoke token", zap.Int("user_id", id.UserID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not sign out"})
		}
	}
	c.ClearCookie(auth.CookieName)
	return c.JSON(fiber.Map{"message": "Signed out"})
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		h.log.Error("list users", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not load users"})
	}
	response := make([]User, 0, len(users))
	for _, u := range users {
		response = append(response, sanitizeUser(u))
	}
	return c.JSON(response)
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	u, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return h.lookupError(c, err)
	}
	return c.JSON(sanitizeUser(u))
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.lookupError(c, err)
	}
	h.log.Info("user deleted", zap.Int("user_id", id))
	return c.JSON(fiber.Map{"message": "User deleted"})
}

// getProfile returns the account of the authenticated caller.
func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	u, err := h.service.GetByID(c.UserContext(), userID)
	if err != nil {
		return h.lookupError(c, err)
	}
	return c.JSON(sanitizeUser(u))
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(ProfileUpdate)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if errs := validation.Struct(payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid fields", "errors": errs})
	}

	updated, err := h.service.UpdateProfile(c.UserContext(), userID, *payload)
	if err != nil {
		return h.lookupError(c, err)
	}
	return c.JSON(sanitizeUser(updated))
}

func (h *Handler) uploadAvatar(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	// accept the descriptive "avatar" field and the generic "file" key
	var file *multipart.FileHeader
	if f, ferr := c.FormFile("avatar"); ferr == nil && f != nil {
		file = f
	} else if f, ferr := c.FormFile("file"); ferr == nil && f != nil {
		file = f
	}
	if file == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "file is required"})
	}
	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "could not read file"})
	}
	defer f.Close()

	obj, err := h.store.Put(c.UserContext(), "avatars", f)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "avatar must be a jpeg, png, gif or webp image"})
		}
		h.log.Error("store avatar", zap.Int("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not store avatar"})
	}

	updated, previous, err := h.service.SetAvatar(c.UserContext(), userID, &obj.URL)
	if err != nil {
		_ = h.store.Delete(c.UserContext(), obj.Key)
		return h.lookupError(c, err)
	}
	h.dropObject(c.UserContext(), previous)
	return c.JSON(fiber.Map{"avatarUrl": obj.URL, "user": sanitizeUser(updated)})
}

func (h *Handler) removeAvatar(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	updated, previous, err := h.service.SetAvatar(c.UserContext(), userID, nil)
	if err != nil {
		return h.lookupError(c, err)
	}
	h.dropObject(c.UserContext(), previous)
	return c.JSON(fiber.Map{"avatarUrl": nil, "user": sanitizeUser(updated)})
}

// dropObject removes a replaced avatar; failures only leave an orphan file.
func (h *Handler) dropObject(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	key := storage.KeyFromURL(*url)
	if key == "" {
		return
	}
	if err := h.store.Delete(ctx, key); err != nil {
		h.log.Warn("delete replaced avatar", zap.String("key", key), zap.Error(err))
	}
}

func (h *Handler) lookupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	case errors.Is(err, ErrEmailExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "email already exists"})
	default:
		h.log.Error("user request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
}
