package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/internal/storage/models"
	"github.com/sentimentscope/backend/pkg/logger"
)

const userLocalsKey = "auth_user"

// Middleware resolves the Authorization bearer token and rejects the
// request with 401 before any fetch or classification work runs.
func Middleware(service *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get("Authorization"))

		user, err := service.ResolveUser(c.Context(), token)
		if err != nil {
			logger.Error("Failed to resolve session", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to resolve session",
			})
		}
		if user == nil {
			logger.Warn("Request rejected: not authenticated", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required. Please login first.",
			})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// UserFromCtx returns the authenticated user stored by Middleware.
func UserFromCtx(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}

func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
