package repositories

import (
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockAddressRepository is an in-memory implementation of AddressRepository.
type MockAddressRepository struct {
	addresses map[string][]models.Address
	mu        sync.RWMutex
}

// NewMockAddressRepository creates a new instance of MockAddressRepository.
func NewMockAddressRepository() *MockAddressRepository {
	return &MockAddressRepository{
		addresses: make(map[string][]models.Address),
	}
}

// ListByUser returns the user's addresses, newest first.
func (r *MockAddressRepository) ListByUser(userID string) ([]models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.addresses[userID]
	out := make([]models.Address, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

// CountByUser returns how many addresses the user has.
func (r *MockAddressRepository) CountByUser(userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.addresses[userID])), nil
}

// GetByID returns one of the user's addresses.
func (r *MockAddressRepository) GetByID(userID, id string) (*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.addresses[userID] {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, apperr.NotFound("address", id)
}

// CreateCapped adds the address unless the owner already has max.
func (r *MockAddressRepository) CreateCapped(address *models.Address, max int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.addresses[address.UserID]) >= max {
		return apperr.ErrAddressLimitReached
	}
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	now := time.Now()
	address.CreatedAt, address.UpdatedAt = now, now
	r.addresses[address.UserID] = append(r.addresses[address.UserID], *address)
	return nil
}

// Update overwrites an address owned by address.UserID.
func (r *MockAddressRepository) Update(address *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.addresses[address.UserID]
	for i := range list {
		if list[i].ID == address.ID {
			updated := *address
			updated.CreatedAt = list[i].CreatedAt
			updated.UpdatedAt = time.Now()
			list[i] = updated
			return nil
		}
	}
	return apperr.NotFound("address", address.ID)
}

// Delete removes one of the user's addresses.
func (r *MockAddressRepository) Delete(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.addresses[userID]
	for i := range list {
		if list[i].ID == id {
			r.addresses[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("address", id)
}
