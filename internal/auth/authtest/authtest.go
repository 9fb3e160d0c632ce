// Package authtest injects identities into Fiber test apps without signing
// real tokens.
package authtest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-Role"
)

// Inject stores a parsed-looking token in c.Locals("user") when the
// X-User-ID header is present. X-Role defaults to "user".
func Inject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v := c.Get(HeaderUserID); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				role := c.Get(HeaderRole)
				if role == "" {
					role = "user"
				}
				claims := jwt.MapClaims{"user_id": id, "role": role, "jti": "test-" + v}
				c.Locals("user", &jwt.Token{Claims: claims, Valid: true})
			}
		}
		return c.Next()
	}
}
