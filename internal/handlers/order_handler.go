package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/receipt"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	carts   *services.CartService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, carts *services.CartService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		carts:   carts,
		logger:  logger,
	}
}

// CheckoutRequest is the body of a checkout. ClearCart removes the ordered
// products from the cart once the order is stored.
type CheckoutRequest struct {
	services.PlaceOrderInput
	ClearCart bool `json:"clearCart"`
}

// StatusUpdateRequest is the body of an admin status change.
type StatusUpdateRequest struct {
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transactionId"`
}

// RegisterRoutes registers the customer and admin order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	orderRoutes := router.Group("/orders", authRequired)
	orderRoutes.Post("/", middleware.RequireRole(models.RoleUser), h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/receipt", h.HandleGetReceipt)

	admin := router.Group("/admin/orders", authRequired, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/", h.HandleGetAllOrders)
	admin.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleCreateOrder places an order from the user's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	userID := middleware.UserID(c)

	order, err := h.service.PlaceOrder(userID, req.PlaceOrderInput)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if req.ClearCart {
		ordered := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			ordered = append(ordered, item.ProductID)
		}
		if err := h.carts.RemoveProducts(userID, ordered); err != nil {
			h.logger.Warn("failed to clear cart after checkout",
				zap.String("user_id", userID),
				zap.String("order_id", order.OrderID),
				zap.Error(err),
			)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order placed successfully",
		"data":    order,
	})
}

// HandleGetOrders returns the authenticated user's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListUserOrders(middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// HandleGetOrderByID retrieves a single order by its orderId or internal ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(middleware.UserID(c), middleware.Role(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// HandleGetReceipt streams the order's PDF receipt.
func (h *OrderHandler) HandleGetReceipt(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(middleware.UserID(c), middleware.Role(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	pdf, err := receipt.Render(order)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+receipt.Filename(order)+`"`)
	return c.Send(pdf)
}

// HandleGetAllOrders returns every order.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// HandleUpdateOrderStatus moves an order along the payment state machine.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	order, err := h.service.UpdatePaymentStatus(c.Params("id"), req.Status, req.TransactionID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order status updated successfully",
		"data":    order,
	})
}
