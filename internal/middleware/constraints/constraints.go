package constraints

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// RequireInt makes a route match only when param is a base-10 integer.
// Any other value answers 404 Not Found, as if no route matched.
func RequireInt(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := strconv.Atoi(c.Params(param)); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"code":    "NOT_FOUND",
				"message": "Not Found",
			})
		}
		return c.Next()
	}
}
