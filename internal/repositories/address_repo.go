package repositories

import "storefront/internal/models"

// AddressRepository defines the interface for address data access.
// Every lookup is scoped by owner; foreign addresses are reported as not found.
type AddressRepository interface {
	ListByUser(userID string) ([]models.Address, error)
	CountByUser(userID string) (int64, error)
	GetByID(userID, id string) (*models.Address, error)
	// CreateCapped inserts the address unless the owner already has max,
	// in which case it returns apperr.ErrAddressLimitReached.
	CreateCapped(address *models.Address, max int) error
	Update(address *models.Address) error
	Delete(userID, id string) error
}
