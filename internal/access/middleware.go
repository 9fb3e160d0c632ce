package access

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/auth"
)

// TokenParser verifies a raw token.
type TokenParser interface {
	Parse(raw string) (auth.Identity, error)
}

// RequireRole lets the request through only for the given roles. It expects
// the JWT middleware to have run.
func RequireRole(roles ...auth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.FromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		for _, r := range roles {
			if id.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	}
}

// PageGuard redirects browser navigations according to Resolve. API, upload
// and non-GET requests are left alone; an invalid or revoked token counts as
// anonymous. revoked may be nil.
func PageGuard(tokens TokenParser, revoked auth.Revocations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet || isBackendPath(c.Path()) {
			return c.Next()
		}
		role := CallerRole(c, tokens, revoked)
		if target, ok := Resolve(c.Path(), role); ok {
			return c.Redirect(target, fiber.StatusFound)
		}
		return c.Next()
	}
}

// CallerRole returns the role of an optional caller, or "" when anonymous.
// A token on the denylist, or one whose status cannot be checked, is treated
// as anonymous.
func CallerRole(c *fiber.Ctx, tokens TokenParser, revoked auth.Revocations) auth.Role {
	raw := c.Cookies(auth.CookieName)
	if h := c.Get(fiber.HeaderAuthorization); raw == "" && len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		raw = h[7:]
	}
	if raw == "" || tokens == nil {
		return ""
	}
	id, err := tokens.Parse(raw)
	if err != nil {
		return ""
	}
	if revoked != nil {
		gone, err := revoked.IsRevoked(c.UserContext(), id.TokenID)
		if err != nil || gone {
			return ""
		}
	}
	return id.Role
}

func isBackendPath(p string) bool {
	for _, prefix := range []string{"/api", "/uploads", "/metrics", "/health"} {
		if underPrefix(p, prefix) {
			return true
		}
	}
	return false
}
