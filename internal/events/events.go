// Package events defines the order lifecycle events and the listener that
// reacts to them.
package events

import (
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Event types.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// Envelope is the wire format of every event on the order queue.
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// OrderPayload describes an order in an event.
type OrderPayload struct {
	ID         string             `json:"id"`
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	Status     string             `json:"status"`
	GrandTotal float64            `json:"grand_total"`
	Items      []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// NewOrderPayload builds the event payload for order.
func NewOrderPayload(order *models.Order) OrderPayload {
	items := make([]OrderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemPayload{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return OrderPayload{
		ID:         order.ID,
		OrderID:    order.OrderID,
		UserID:     order.UserID,
		Status:     string(order.PaymentStatus),
		GrandTotal: order.GrandTotal,
		Items:      items,
	}
}

// LowStock is a product whose stock fell to or below the threshold.
type LowStock struct {
	ProductID  string
	Title      string
	TotalStock int
}

// OrderListener watches order events for products running low on stock.
type OrderListener struct {
	products  repositories.ProductRepository
	threshold int
	logger    *zap.Logger
}

// NewOrderListener creates a listener flagging stock at or below threshold.
func NewOrderListener(products repositories.ProductRepository, threshold int, logger *zap.Logger) *OrderListener {
	return &OrderListener{
		products:  products,
		threshold: threshold,
		logger:    logger,
	}
}

// Handle processes one raw message. Malformed messages are dropped; an
// error means the message should be retried.
func (l *OrderListener) Handle(body []byte) error {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return nil
	}

	switch envelope.EventType {
	case OrderCreated:
	case OrderStatusChanged:
		l.logger.Debug("Order status changed", zap.String("event_id", envelope.EventID))
		return nil
	default:
		return nil
	}

	var payload OrderPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		l.logger.Error("Failed to unmarshal order payload", zap.String("event_id", envelope.EventID), zap.Error(err))
		return nil
	}

	l.logger.Info("Processing order.created event", zap.String("order_id", payload.OrderID))
	low, err := l.LowStock(payload)
	if err != nil {
		return err
	}
	for _, p := range low {
		l.logger.Warn("Product stock is low",
			zap.String("order_id", payload.OrderID),
			zap.String("product_id", p.ProductID),
			zap.String("title", p.Title),
			zap.Int("total_stock", p.TotalStock),
		)
	}
	return nil
}

// LowStock returns the ordered products whose remaining stock is at or below
// the threshold. Products deleted since the order are skipped.
func (l *OrderListener) LowStock(payload OrderPayload) ([]LowStock, error) {
	var low []LowStock
	seen := make(map[string]bool, len(payload.Items))
	for _, item := range payload.Items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true

		product, err := l.products.GetByID(item.ProductID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if product.TotalStock <= l.threshold {
			low = append(low, LowStock{ProductID: product.ID, Title: product.Title, TotalStock: product.TotalStock})
		}
	}
	return low, nil
}
