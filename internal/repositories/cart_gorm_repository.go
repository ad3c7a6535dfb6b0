package repositories

import (
	"fmt"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const decrementAttempts = 3

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// ListByUser returns the user's cart lines in the order they were added.
func (r *GORMCartRepository) ListByUser(userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart of user %s: %w", userID, err)
	}
	return lines, nil
}

// AddQuantity upserts the line so that concurrent adds of the same product
// accumulate instead of creating duplicates. A merge that would push the line
// past models.MaxLineQuantity leaves it unchanged and fails with ErrInvalidQuantity.
func (r *GORMCartRepository) AddQuantity(userID, productID string, quantity int) error {
	if quantity < 1 || quantity > models.MaxLineQuantity {
		return apperr.ErrInvalidQuantity
	}
	line := models.CartLine{UserID: userID, ProductID: productID, Quantity: quantity}
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
			"updated_at": time.Now(),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("cart_lines.quantity + excluded.quantity <= ?", models.MaxLineQuantity),
		}},
	}).Create(&line)
	if res.Error != nil {
		return fmt.Errorf("failed to add product %s to cart: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrInvalidQuantity
	}
	return nil
}

// SetQuantity overwrites the quantity of an existing line.
func (r *GORMCartRepository) SetQuantity(userID, productID string, quantity int) error {
	if quantity < 1 || quantity > models.MaxLineQuantity {
		return apperr.ErrInvalidQuantity
	}
	res := r.db.Model(&models.CartLine{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrLineNotFound
	}
	return nil
}

// Decrement lowers a line by one, deleting it when it would reach zero.
func (r *GORMCartRepository) Decrement(userID, productID string) error {
	for attempt := 0; attempt < decrementAttempts; attempt++ {
		res := r.db.Model(&models.CartLine{}).
			Where("user_id = ? AND product_id = ? AND quantity > 1", userID, productID).
			Update("quantity", gorm.Expr("quantity - 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement cart line: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}

		res = r.db.Where("user_id = ? AND product_id = ? AND quantity <= 1", userID, productID).
			Delete(&models.CartLine{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove cart line: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := r.db.Model(&models.CartLine{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up cart line: %w", err)
		}
		if count == 0 {
			return apperr.ErrLineNotFound
		}
		// the line changed between statements; try again
	}
	return apperr.Conflict("CartBusy", "cart line is being modified concurrently")
}

// Remove deletes one line. Removing an absent line is not an error.
func (r *GORMCartRepository) Remove(userID, productID string) error {
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartLine{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

// RemoveProducts deletes the user's lines for the given products, ignoring absent ones.
func (r *GORMCartRepository) RemoveProducts(userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	err := r.db.Where("user_id = ? AND product_id IN ?", userID, productIDs).Delete(&models.CartLine{}).Error
	if err != nil {
		return fmt.Errorf("failed to prune cart of user %s: %w", userID, err)
	}
	return nil
}

// Clear empties the user's cart.
func (r *GORMCartRepository) Clear(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart of user %s: %w", userID, err)
	}
	return nil
}
