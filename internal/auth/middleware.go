package auth

import (
	"strings"

	"github.com/Kyz7/storefront/internal/models"
	"github.com/Kyz7/storefront/internal/response"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

func JWTProtected(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != TokenType {
			return response.Error(c, fiber.StatusUnauthorized, "INVALID_TOKEN_FORMAT", "Invalid token format", nil)
		}

		user, err := svc.Resolve(c.UserContext(), tokenParts[1])
		if err != nil {
			return response.FromError(c, err)
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by JWTProtected, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// WithUser stores user the way JWTProtected does.
func WithUser(c *fiber.Ctx, user *models.User) {
	c.Locals(userKey, user)
}
