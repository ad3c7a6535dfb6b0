package repositories

import (
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// Stock is deducted from and returned to the wrapped product repository.
type MockOrderRepository struct {
	orders   map[string]*models.Order
	byPublic map[string]string
	order    []string
	products *MockProductRepository
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(products *MockProductRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]*models.Order),
		byPublic: make(map[string]string),
		products: products,
	}
}

// CreateWithStockDeduction deducts stock and stores the order, all or nothing.
func (r *MockOrderRepository) CreateWithStockDeduction(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byPublic[order.OrderID]; taken {
		return apperr.ErrDuplicateOrderID
	}

	deltas := make(map[string]int, len(order.Items))
	for _, item := range order.Items {
		deltas[item.ProductID] -= item.Quantity
	}
	if err := r.products.AdjustStock(deltas); err != nil {
		return err
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	for i := range order.Items {
		order.Items[i].ID = uint(i + 1)
		order.Items[i].OrderRef = order.ID
	}
	r.orders[order.ID] = order.Clone()
	r.byPublic[order.OrderID] = order.ID
	r.order = append(r.order, order.ID)
	return nil
}

// GetByID returns an order by its orderId or internal id.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.lookup(id)
	if !ok {
		return nil, apperr.NotFound("order", id)
	}
	return order.Clone(), nil
}

func (r *MockOrderRepository) lookup(id string) (*models.Order, bool) {
	if internal, ok := r.byPublic[id]; ok {
		id = internal
	}
	order, ok := r.orders[id]
	return order, ok
}

// ListByUser returns the user's orders, newest first.
func (r *MockOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	return r.list(func(o *models.Order) bool { return o.UserID == userID }), nil
}

// GetAll returns all orders, newest first.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	return r.list(func(*models.Order) bool { return true }), nil
}

func (r *MockOrderRepository) list(keep func(*models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		o := r.orders[r.order[i]]
		if keep(o) {
			orderList = append(orderList, *o.Clone())
		}
	}
	return orderList
}

// TransitionStatus moves an order from one status to another.
func (r *MockOrderRepository) TransitionStatus(id string, from, to models.PaymentStatus, transactionID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.lookup(id)
	if !ok {
		return nil, apperr.NotFound("order", id)
	}
	if order.PaymentStatus != from {
		return nil, apperr.ErrStatusConflict
	}

	if to.ReleasesStock() {
		deltas := make(map[string]int, len(order.Items))
		for _, item := range order.Items {
			deltas[item.ProductID] += item.Quantity
		}
		if err := r.products.AdjustStock(deltas); err != nil {
			return nil, err
		}
	}

	order.PaymentStatus = to
	if transactionID != "" {
		order.TransactionID = transactionID
	}
	order.UpdatedAt = time.Now()
	return order.Clone(), nil
}
