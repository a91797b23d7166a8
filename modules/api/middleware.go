package api

import (
	"strings"

	"github.com/example/task-workflow/modules/user"
	"github.com/gofiber/fiber/v2"
)

// UserContextKey is the Locals key holding the caller's *userdomain.Claims.
const UserContextKey = "user"

// AuthMiddleware rejects requests without a valid bearer token issued by the
// user directory.
func AuthMiddleware(users user.UserPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "Authorization header is required")
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return unauthorized(c, "Invalid authorization header format. Use: Bearer <token>")
		}

		claims, err := users.ValidateToken(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}
