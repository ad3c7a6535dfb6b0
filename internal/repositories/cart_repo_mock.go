package repositories

import (
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	lines map[string][]models.CartLine
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		lines: make(map[string][]models.CartLine),
	}
}

// ListByUser returns the user's lines in the order they were added.
func (r *MockCartRepository) ListByUser(userID string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.CartLine(nil), r.lines[userID]...), nil
}

func (r *MockCartRepository) index(userID, productID string) int {
	for i, l := range r.lines[userID] {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddQuantity merges quantity into the existing line or creates one.
func (r *MockCartRepository) AddQuantity(userID, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if quantity < 1 || quantity > models.MaxLineQuantity {
		return apperr.ErrInvalidQuantity
	}
	now := time.Now()
	if i := r.index(userID, productID); i >= 0 {
		if r.lines[userID][i].Quantity > models.MaxLineQuantity-quantity {
			return apperr.ErrInvalidQuantity
		}
		r.lines[userID][i].Quantity += quantity
		r.lines[userID][i].UpdatedAt = now
		return nil
	}
	r.lines[userID] = append(r.lines[userID], models.CartLine{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

// SetQuantity overwrites the quantity of an existing line.
func (r *MockCartRepository) SetQuantity(userID, productID string, quantity int) error {
	if quantity < 1 || quantity > models.MaxLineQuantity {
		return apperr.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(userID, productID)
	if i < 0 {
		return apperr.ErrLineNotFound
	}
	r.lines[userID][i].Quantity = quantity
	r.lines[userID][i].UpdatedAt = time.Now()
	return nil
}

// Decrement lowers a line by one, removing it at one.
func (r *MockCartRepository) Decrement(userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(userID, productID)
	if i < 0 {
		return apperr.ErrLineNotFound
	}
	if r.lines[userID][i].Quantity <= 1 {
		r.removeAt(userID, i)
		return nil
	}
	r.lines[userID][i].Quantity--
	r.lines[userID][i].UpdatedAt = time.Now()
	return nil
}

// Remove deletes one line if present.
func (r *MockCartRepository) Remove(userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.index(userID, productID); i >= 0 {
		r.removeAt(userID, i)
	}
	return nil
}

func (r *MockCartRepository) removeAt(userID string, i int) {
	lines := r.lines[userID]
	r.lines[userID] = append(lines[:i:i], lines[i+1:]...)
}

// RemoveProducts deletes the user's lines for the given products.
func (r *MockCartRepository) RemoveProducts(userID string, productIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}
	kept := r.lines[userID][:0:0]
	for _, l := range r.lines[userID] {
		if !drop[l.ProductID] {
			kept = append(kept, l)
		}
	}
	r.lines[userID] = kept
	return nil
}

// Clear empties the user's cart.
func (r *MockCartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lines, userID)
	return nil
}
