package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalog and its reviews.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the shop and admin product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	shop := router.Group("/shop/products")
	shop.Get("/", h.HandleListProducts)
	shop.Get("/:id", h.HandleGetProduct)
	shop.Get("/:id/reviews", h.HandleListReviews)
	shop.Post("/:id/reviews", authRequired, h.HandleAddReview)
	shop.Put("/:id/reviews/:reviewId", authRequired, h.HandleEditReview)
	shop.Delete("/:id/reviews/:reviewId", authRequired, h.HandleDeleteReview)

	admin := router.Group("/admin/products", authRequired, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/", h.HandleGetAllProducts)
	admin.Post("/", h.HandleCreateProduct)
	admin.Put("/:id", h.HandleUpdateProduct)
	admin.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListProducts returns the shop listing filtered by the comma separated
// category and brand query values and ordered by sortBy.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(models.ProductFilter{
		Categories: splitCSV(c.Query("category")),
		Brands:     splitCSV(c.Query("brand")),
		SortBy:     c.Query("sortBy", models.SortPriceLowToHigh),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": products})
}

// HandleGetProduct returns one product with its reviews.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

// HandleGetAllProducts returns every product, newest first.
func (h *ProductHandler) HandleGetAllProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": products})
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidBody(c)
	}
	product.ID = ""

	if err := h.service.CreateProduct(&product); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product added successfully",
		"data":    product,
	})
}

// HandleUpdateProduct overwrites the editable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidBody(c)
	}
	product.ID = c.Params("id")

	if err := h.service.UpdateProduct(&product); err != nil {
		return respondError(c, h.logger, err)
	}
	updated, err := h.service.GetProductByID(product.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product updated successfully",
		"data":    updated,
	})
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// HandleListReviews returns a product's reviews.
func (h *ProductHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviews(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": reviews})
}

// HandleAddReview adds a review by the authenticated user.
func (h *ProductHandler) HandleAddReview(c *fiber.Ctx) error {
	var input services.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	product, err := h.service.AddReview(c.Params("id"), middleware.UserID(c), middleware.Username(c), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Review added successfully",
		"data":    product,
	})
}

// HandleEditReview edits a review by its author or an admin.
func (h *ProductHandler) HandleEditReview(c *fiber.Ctx) error {
	var input services.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	product, err := h.service.EditReview(c.Params("id"), c.Params("reviewId"), middleware.UserID(c), middleware.Role(c), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Review updated successfully",
		"data":    product,
	})
}

// HandleDeleteReview deletes a review by its author or an admin.
func (h *ProductHandler) HandleDeleteReview(c *fiber.Ctx) error {
	product, err := h.service.DeleteReview(c.Params("id"), c.Params("reviewId"), middleware.UserID(c), middleware.Role(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Review deleted successfully",
		"data":    product,
	})
}
