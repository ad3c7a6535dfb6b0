package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the shopping cart. Every mutation
// answers with the full cart and its totals.
type CartHandler struct {
	service *services.CartService
	logger  *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// CartLineRequest is the body of add and update requests.
type CartLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	cart := router.Group("/shop/cart", authRequired, middleware.RequireRole(models.RoleUser))
	cart.Get("/", h.HandleGetCart)
	cart.Post("/", h.HandleAddItem)
	cart.Put("/", h.HandleUpdateQuantity)
	cart.Delete("/", h.HandleClearCart)
	cart.Patch("/:productId/decrease", h.HandleDecreaseQuantity)
	cart.Delete("/:productId", h.HandleRemoveItem)
}

// HandleGetCart returns the authenticated user's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return h.reply(c, fiber.StatusOK, "")(h.service.GetCart(middleware.UserID(c)))
}

// HandleAddItem adds quantity units of a product, merging with an existing line.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req CartLineRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	return h.reply(c, fiber.StatusOK, "Product added to cart")(
		h.service.AddItem(middleware.UserID(c), req.ProductID, req.Quantity))
}

// HandleUpdateQuantity sets a line's quantity; below 1 removes the line.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req CartLineRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	return h.reply(c, fiber.StatusOK, "Cart updated")(
		h.service.UpdateQuantity(middleware.UserID(c), req.ProductID, req.Quantity))
}

// HandleDecreaseQuantity takes one unit off a line.
func (h *CartHandler) HandleDecreaseQuantity(c *fiber.Ctx) error {
	return h.reply(c, fiber.StatusOK, "Cart updated")(
		h.service.DecreaseQuantity(middleware.UserID(c), c.Params("productId")))
}

// HandleRemoveItem deletes a line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	return h.reply(c, fiber.StatusOK, "Product removed from cart")(
		h.service.RemoveItem(middleware.UserID(c), c.Params("productId")))
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	return h.reply(c, fiber.StatusOK, "Cart cleared")(h.service.ClearCart(middleware.UserID(c)))
}

func (h *CartHandler) reply(c *fiber.Ctx, status int, message string) func(*services.CartView, error) error {
	return func(cart *services.CartView, err error) error {
		if err != nil {
			return respondError(c, h.logger, err)
		}
		body := fiber.Map{"success": true, "data": cart}
		if message != "" {
			body["message"] = message
		}
		return c.Status(status).JSON(body)
	}
}
