package repositories

import (
	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateWithStockDeduction deducts every item's quantity from product stock
	// and persists the order as one unit. Nothing is written if any product
	// lacks stock (apperr.InsufficientStock) or the orderId is taken
	// (apperr.ErrDuplicateOrderID).
	CreateWithStockDeduction(order *models.Order) error
	// GetByID accepts either the public orderId or the internal id.
	GetByID(id string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	GetAll() ([]models.Order, error)
	// TransitionStatus moves an order from one status to another, failing with
	// apperr.ErrStatusConflict if the current status is not from. Entering a
	// stock-releasing status restocks the items in the same unit of work.
	TransitionStatus(id string, from, to models.PaymentStatus, transactionID string) (*models.Order, error)
}
