package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{
		db: db,
	}
}

// ListByUser returns the user's addresses, newest first.
func (r *GORMAddressRepository) ListByUser(userID string) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses of user %s: %w", userID, err)
	}
	return addresses, nil
}

// CountByUser returns how many addresses the user has.
func (r *GORMAddressRepository) CountByUser(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count addresses of user %s: %w", userID, err)
	}
	return count, nil
}

// GetByID returns one of the user's addresses.
func (r *GORMAddressRepository) GetByID(userID, id string) (*models.Address, error) {
	var address models.Address
	if err := r.db.First(&address, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("address", id)
		}
		return nil, fmt.Errorf("failed to get address %s: %w", id, err)
	}
	return &address, nil
}

// CreateCapped inserts the address while the owner has fewer than max.
// The user row is locked so two concurrent inserts cannot both pass the count.
func (r *GORMAddressRepository) CreateCapped(address *models.Address, max int) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var owner models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&owner, "id = ?", address.UserID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to lock user %s: %w", address.UserID, err)
		}

		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", address.UserID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count addresses: %w", err)
		}
		if count >= int64(max) {
			return apperr.ErrAddressLimitReached
		}
		if err := tx.Create(address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
}

// Update overwrites an address owned by address.UserID.
func (r *GORMAddressRepository) Update(address *models.Address) error {
	res := r.db.Model(&models.Address{}).
		Where("id = ? AND user_id = ?", address.ID, address.UserID).
		Select("address", "city", "pin_code", "phone", "notes").
		Updates(address)
	if res.Error != nil {
		return fmt.Errorf("failed to update address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("address", address.ID)
	}
	return nil
}

// Delete removes one of the user's addresses.
func (r *GORMAddressRepository) Delete(userID, id string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("address", id)
	}
	return nil
}
