package middleware

import (
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Fiber locals set by AuthRequired.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalRole     = "role"
)

// TokenCookie is the cookie carrying the JWT for browser clients.
const TokenCookie = "token"

// AuthRequired is a Fiber middleware to check for a valid JWT token, taken
// from the Authorization header or, failing that, the token cookie.
func AuthRequired(authService *services.AuthService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			tokenString = c.Cookies(TokenCookie)
		}
		if tokenString == "" {
			return deny(c, fiber.StatusUnauthorized, apperr.ErrUnauthorized.Code, "Unauthorised user!")
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logger.Debug("JWT validation failed", zap.String("path", c.Path()), zap.Error(err))
			return deny(c, fiber.StatusUnauthorized, apperr.ErrUnauthorized.Code, "Invalid or expired token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// RequireRole lets the request through only when the authenticated role is one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return deny(c, fiber.StatusForbidden, apperr.ErrForbidden.Code, "You are not allowed to perform this action")
	}
}

// UserID returns the authenticated user's ID.
func UserID(c *fiber.Ctx) string {
	return local(c, LocalUserID)
}

// Username returns the authenticated user's name.
func Username(c *fiber.Ctx) string {
	return local(c, LocalUsername)
}

// Role returns the authenticated user's role.
func Role(c *fiber.Ctx) string {
	return local(c, LocalRole)
}

func local(c *fiber.Ctx, key string) string {
	v, _ := c.Locals(key).(string)
	return v
}

func deny(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   code,
	})
}
