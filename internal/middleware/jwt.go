package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/utils"
)

// accessClaims is the token payload issued by the identity provider: the
// platform user id plus one role from the closed role set.
type accessClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// subjectID prefers the registered subject and falls back to the user_id claim.
func (c accessClaims) subjectID() (uint, bool) {
	if sub := strings.TrimSpace(c.Subject); sub != "" {
		if parsed, err := strconv.ParseUint(sub, 10, 64); err == nil {
			return uint(parsed), true
		}
	}
	if c.UserID > 0 {
		return c.UserID, true
	}
	return 0, false
}

// JWTProtected validates HMAC-signed bearer tokens and binds the actor to the
// request. A token carrying a role outside the platform's role set still
// authenticates, but the actor holds no capabilities.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		claims := &accessClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		if id, ok := claims.subjectID(); ok {
			c.Locals("user_id", id)
		}
		if role := models.ParseRole(claims.Role); role != "" {
			c.Locals("user_role", role.String())
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("authorization header missing")
	}

	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", fmt.Errorf("invalid authorization header")
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", fmt.Errorf("invalid token")
	}

	return token, nil
}
