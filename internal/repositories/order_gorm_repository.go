package repositories

import (
	"errors"
	"fmt"
	"sort"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// CreateWithStockDeduction persists the order and its items after deducting
// every item's quantity from stock, all in one transaction. Products are
// locked in ID order so concurrent checkouts cannot deadlock.
func (r *GORMOrderRepository) CreateWithStockDeduction(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	wanted := quantitiesByProduct(order.Items)

	return r.db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Order{}).Where("order_id = ?", order.OrderID).Count(&taken).Error; err != nil {
			return fmt.Errorf("failed to check order id: %w", err)
		}
		if taken > 0 {
			return apperr.ErrDuplicateOrderID
		}

		for _, w := range wanted {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND total_stock >= ?", w.productID, w.quantity).
				UpdateColumn("total_stock", gorm.Expr("total_stock - ?", w.quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to deduct stock of product %s: %w", w.productID, res.Error)
			}
			if res.RowsAffected == 0 {
				var count int64
				if err := tx.Model(&models.Product{}).Where("id = ?", w.productID).Count(&count).Error; err != nil {
					return fmt.Errorf("failed to look up product %s: %w", w.productID, err)
				}
				if count == 0 {
					return apperr.NotFound("product", w.productID)
				}
				return apperr.InsufficientStock(w.productID)
			}
		}

		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrDuplicateOrderID
			}
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

type productQuantity struct {
	productID string
	quantity  int
}

// quantitiesByProduct sums item quantities per product, sorted by product ID.
func quantitiesByProduct(items []models.OrderItem) []productQuantity {
	totals := make(map[string]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}
	out := make([]productQuantity, 0, len(totals))
	for id, qty := range totals {
		out = append(out, productQuantity{productID: id, quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out
}

// GetByID retrieves an order by its public orderId, falling back to the internal id.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	return r.get(r.db, id)
}

func (r *GORMOrderRepository) get(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	err := preloadItems(db).Where("order_id = ? OR id = ?", id, id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser returns the user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := preloadItems(r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of user %s: %w", userID, err)
	}
	return orders, nil
}

// GetAll returns every order, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := preloadItems(r.db).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// TransitionStatus moves the order from one status to another with a
// conditional update, restocking its items when the new status releases stock.
func (r *GORMOrderRepository) TransitionStatus(id string, from, to models.PaymentStatus, transactionID string) (*models.Order, error) {
	var updated *models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		changes := map[string]interface{}{"payment_status": to}
		if transactionID != "" {
			changes["transaction_id"] = transactionID
		}
		res := tx.Model(&models.Order{}).
			Where("(order_id = ? OR id = ?) AND payment_status = ?", id, id, from).
			Updates(changes)
		if res.Error != nil {
			return fmt.Errorf("failed to update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if _, err := r.get(tx, id); err != nil {
				return err
			}
			return apperr.ErrStatusConflict
		}

		order, err := r.get(tx, id)
		if err != nil {
			return err
		}
		if to.ReleasesStock() {
			for _, w := range quantitiesByProduct(order.Items) {
				// deleted products are skipped
				err := tx.Model(&models.Product{}).
					Where("id = ?", w.productID).
					UpdateColumn("total_stock", gorm.Expr("total_stock + ?", w.quantity)).Error
				if err != nil {
					return fmt.Errorf("failed to restock product %s: %w", w.productID, err)
				}
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
