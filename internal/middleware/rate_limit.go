package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/Ahad-dev/fypify-api/internal/utils"
)

// RateLimit throttles one named operation, keyed on the authenticated actor.
// Anonymous requests fall back to the client IP. Exceeding the budget yields
// the standard error envelope with a 429.
func RateLimit(operation string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if actorID, ok := c.Locals("user_id").(uint); ok && actorID > 0 {
				return fmt.Sprintf("%s:actor:%d", operation, actorID)
			}
			return fmt.Sprintf("%s:ip:%s", operation, c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, fmt.Sprintf("rate limit exceeded for %s", operation))
		},
	})
}
