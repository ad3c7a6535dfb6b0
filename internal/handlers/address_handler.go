package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AddressHandler handles HTTP requests for the address book.
type AddressHandler struct {
	service *services.AddressService
	logger  *zap.Logger
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the address routes.
func (h *AddressHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	addr := router.Group("/shop/address", authRequired, middleware.RequireRole(models.RoleUser))
	addr.Get("/", h.HandleListAddresses)
	addr.Post("/", h.HandleAddAddress)
	addr.Get("/:id", h.HandleGetAddress)
	addr.Put("/:id", h.HandleEditAddress)
	addr.Delete("/:id", h.HandleDeleteAddress)
}

// HandleListAddresses returns the user's addresses.
func (h *AddressHandler) HandleListAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.ListAddresses(middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

// HandleGetAddress returns one of the user's addresses.
func (h *AddressHandler) HandleGetAddress(c *fiber.Ctx) error {
	address, err := h.service.GetAddress(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": address})
}

// HandleAddAddress adds an address to the user's book.
func (h *AddressHandler) HandleAddAddress(c *fiber.Ctx) error {
	var input models.Address
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	address, err := h.service.AddAddress(middleware.UserID(c), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Address added successfully",
		"data":    address,
	})
}

// HandleEditAddress applies the supplied fields to an address.
func (h *AddressHandler) HandleEditAddress(c *fiber.Ctx) error {
	var patch services.AddressPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(c)
	}

	address, err := h.service.EditAddress(middleware.UserID(c), c.Params("id"), patch)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Address updated successfully",
		"data":    address,
	})
}

// HandleDeleteAddress removes an address.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	if err := h.service.DeleteAddress(middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Address deleted successfully",
	})
}
