package repositories

import "storefront/internal/models"

// CartRepository defines the interface for cart line data access.
type CartRepository interface {
	ListByUser(userID string) ([]models.CartLine, error)
	// AddQuantity merges quantity into the user's line for productID,
	// creating it when absent.
	AddQuantity(userID, productID string, quantity int) error
	// SetQuantity fails with apperr.ErrLineNotFound when no line exists.
	SetQuantity(userID, productID string, quantity int) error
	// Decrement lowers the quantity by one and removes the line at one.
	Decrement(userID, productID string) error
	// Remove is idempotent.
	Remove(userID, productID string) error
	RemoveProducts(userID string, productIDs []string) error
	Clear(userID string) error
}
