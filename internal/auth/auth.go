package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Role is the account type carried in the token.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleAdmin     Role = "admin"
)

// CookieName is the cookie the sign-in endpoint sets alongside the JSON token.
const CookieName = "token"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleAdmin:
		return true
	}
	return false
}

// Identity is the caller as described by a verified token.
type Identity struct {
	UserID    int
	Email     string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// Issuer signs HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the account and the identity it encodes.
func (i *Issuer) Issue(userID int, email string, role Role) (string, Identity, error) {
	id := Identity{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenID:   uuid.NewString(),
		ExpiresAt: i.now().Add(i.ttl),
	}
	claims := jwt.MapClaims{
		"user_id": id.UserID,
		"email":   id.Email,
		"role":    string(id.Role),
		"jti":     id.TokenID,
		"exp":     id.ExpiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Identity{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, id, nil
}

// Parse verifies a raw token outside of the middleware, e.g. for page guards.
func (i *Issuer) Parse(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrUnauthorized
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	return identityFromToken(tok)
}

// Revocations answers whether a token id has been revoked.
type Revocations interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Middleware rejects requests without a valid, unrevoked token. Tokens are
// read from the Authorization header first and then from the session cookie.
func (i *Issuer) Middleware(revoked Revocations, filter func(*fiber.Ctx) bool) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  i.secret,
		TokenLookup: "header:Authorization,cookie:" + CookieName,
		Filter:      filter,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			if revoked == nil {
				return c.Next()
			}
			id, err := FromCtx(c)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
			}
			gone, err := revoked.IsRevoked(c.UserContext(), id.TokenID)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not verify session"})
			}
			if gone {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "session has ended"})
			}
			return c.Next()
		},
	})
}

// FromCtx extracts the identity from the token the JWT middleware stored in
// c.Locals("user").
func FromCtx(c *fiber.Ctx) (Identity, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return Identity{}, ErrUnauthorized
	}
	return identityFromToken(tok)
}

// UserIDFromCtx is FromCtx narrowed to the user id.
func UserIDFromCtx(c *fiber.Ctx) (int, error) {
	id, err := FromCtx(c)
	if err != nil {
		return 0, err
	}
	return id.UserID, nil
}

func identityFromToken(tok *jwt.Token) (Identity, error) {
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrUnauthorized
	}

	userID, err := intClaim(claims["user_id"])
	if err != nil || userID <= 0 {
		return Identity{}, ErrUnauthorized
	}

	id := Identity{UserID: userID}
	id.Email, _ = claims["email"].(string)
	id.TokenID, _ = claims["jti"].(string)
	if r, ok := claims["role"].(string); ok && Role(r).Valid() {
		id.Role = Role(r)
	} else {
		id.Role = RoleUser
	}
	if exp, err := intClaim(claims["exp"]); err == nil {
		id.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return id, nil
}

func intClaim(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, ErrUnauthorized
	}
}
