package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/utils"
)

// RequireCapability ensures the authenticated user's role grants every listed
// capability. Roles are a closed set; unknown roles hold nothing.
func RequireCapability(caps ...models.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := models.ParseRole(roleValueString(c.Locals("user_role")))
		for _, capability := range caps {
			if !role.Can(capability) {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		}
		return c.Next()
	}
}

func roleValueString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
