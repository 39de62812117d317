package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
	"github.com/dolaglobo/mmf-api/internal/core/security"
)

// AdminLoader resolves the authenticated admin from the token subject.
type AdminLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// CustomerProtected authenticates customer bearer tokens and stores the
// customer id in Locals for the handlers.
func CustomerProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or malformed token"})
		}
		customerID, err := security.ParseToken(secret, token, "customer")
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		c.Locals("customer_id", customerID)
		return c.Next()
	}
}

// AdminProtected authenticates admin bearer tokens, loads the admin record
// and stores it in Locals. Deactivated admins are rejected here so no
// handler has to re-check.
func AdminProtected(secret string, admins AdminLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or malformed token"})
		}
		adminID, err := security.ParseToken(secret, token, "admin")
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		admin, err := admins.Get(c.Context(), adminID)
		if err != nil || !admin.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		c.Locals("admin", admin)
		return c.Next()
	}
}
