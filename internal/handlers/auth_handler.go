package handlers

import (
	"time"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService  *services.AuthService
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the token
// cookie Secure, which browsers only send over HTTPS.
func NewAuthHandler(authService *services.AuthService, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// RegisterRoutes registers the authentication routes. limit guards the
// credential endpoints, authRequired the session ones.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired, limit fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", limit, h.HandleRegister)
	authRoutes.Post("/login", limit, h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/check-auth", authRequired, h.HandleCheckAuth)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	user, err := h.authService.RegisterUser(input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful",
		"data":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles user login, issuing a JWT both in the body and as an
// HttpOnly cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	token, user, err := h.authService.LoginUser(req.Email, req.Password)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(h.authService.TokenTTL()),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in successfully",
		"token":   token,
		"data":    user,
	})
}

// HandleLogout clears the token cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully!",
	})
}

// HandleCheckAuth returns the authenticated user.
func (h *AuthHandler) HandleCheckAuth(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Authenticated user!",
		"data":    user,
	})
}
