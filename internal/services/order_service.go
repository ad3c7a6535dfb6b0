package services

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"go.uber.org/zap"
)

const (
	orderIDLength   = 10
	orderIDAttempts = 3
)

// EventPublisher publishes domain events. A nil publisher disables events.
type EventPublisher interface {
	PublishEvent(eventType string, payload interface{}) error
}

// PlaceOrderInput is a checkout request. Either AddressID (an entry of the
// user's address book) or Address (an inline address) must be set.
type PlaceOrderInput struct {
	CustomerName  string               `json:"customerName"`
	AddressID     string               `json:"addressId"`
	Address       *models.OrderAddress `json:"address"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders     repositories.OrderRepository
	products   repositories.ProductRepository
	carts      repositories.CartRepository
	addresses  repositories.AddressRepository
	policy     pricing.Policy
	publisher  EventPublisher
	validate   *validator.Validate
	logger     *zap.Logger
	newOrderID func() string
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	carts repositories.CartRepository,
	addresses repositories.AddressRepository,
	policy pricing.Policy,
	publisher EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:     orders,
		products:   products,
		carts:      carts,
		addresses:  addresses,
		policy:     policy,
		publisher:  publisher,
		validate:   validation.New(),
		logger:     logger,
		newOrderID: func() string { return shortuuid.New()[:orderIDLength] },
	}
}

// PlaceOrder turns the user's current cart into a Pending order, deducting
// stock atomically. The cart itself is left untouched.
func (s *OrderService) PlaceOrder(userID string, input PlaceOrderInput) (*models.Order, error) {
	lines, err := s.carts.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperr.ErrEmptyCart
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, apperr.ErrInvalidQuantity
		}
	}

	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		return nil, apperr.InvalidFields(map[string]string{"customerName": "customerName is required"})
	}

	address, err := s.resolveAddress(userID, input)
	if err != nil {
		return nil, err
	}

	if !input.PaymentMethod.Valid() {
		return nil, apperr.ErrInvalidPaymentMethod
	}

	items, totals, err := s.snapshot(lines)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		CustomerName:  customerName,
		Items:         items,
		Amount:        totals.Subtotal,
		Discount:      totals.Discount,
		Shipping:      totals.Shipping,
		Tax:           totals.Tax,
		GrandTotal:    totals.GrandTotal,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: models.StatusPending,
		Address:       address,
	}

	for attempt := 1; ; attempt++ {
		order.OrderID = s.newOrderID()
		err = s.orders.CreateWithStockDeduction(order)
		if err == nil {
			break
		}
		if !errors.Is(err, apperr.ErrDuplicateOrderID) || attempt == orderIDAttempts {
			return nil, err
		}
		s.logger.Warn("order id collision, regenerating", zap.String("order_id", order.OrderID))
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", userID),
		zap.Float64("grand_total", order.GrandTotal),
	)
	s.publish(events.OrderCreated, order)
	return order, nil
}

// resolveAddress snapshots the referenced address book entry or validates the inline one.
func (s *OrderService) resolveAddress(userID string, input PlaceOrderInput) (models.OrderAddress, error) {
	if input.AddressID != "" {
		a, err := s.addresses.GetByID(userID, input.AddressID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return models.OrderAddress{}, apperr.InvalidAddress(map[string]string{"addressId": "address not found"})
			}
			return models.OrderAddress{}, err
		}
		return models.SnapshotAddress(a), nil
	}
	if input.Address == nil {
		return models.OrderAddress{}, apperr.ErrInvalidAddress
	}

	address := *input.Address
	address.AddressID = ""
	address.Address = strings.TrimSpace(address.Address)
	address.City = strings.TrimSpace(address.City)
	address.PinCode = strings.TrimSpace(address.PinCode)
	address.Phone = strings.TrimSpace(address.Phone)
	address.Notes = strings.TrimSpace(address.Notes)
	if err := s.validate.Struct(address); err != nil {
		return models.OrderAddress{}, apperr.InvalidAddress(validation.Messages(err))
	}
	return address, nil
}

// snapshot freezes the cart lines at current catalog prices and computes totals.
func (s *OrderService) snapshot(lines []models.CartLine) ([]models.OrderItem, pricing.Totals, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.GetByIDs(ids)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(lines))
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, pricing.Totals{}, apperr.NotFound("product", l.ProductID)
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  l.Quantity,
			UnitPrice: p.EffectivePrice(),
			Image:     p.Image,
		})
		priced = append(priced, pricing.Line{Price: p.Price, SalePrice: p.SalePrice, Quantity: l.Quantity})
	}
	return items, s.policy.Compute(priced), nil
}

// GetOrder returns an order by orderId or internal id. Non-admins only see
// their own orders; anything else is reported as not found.
func (s *OrderService) GetOrder(userID, role, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && order.UserID != userID {
		return nil, apperr.NotFound("order", id)
	}
	return order, nil
}

// ListUserOrders returns the user's orders, newest first.
func (s *OrderService) ListUserOrders(userID string) ([]models.Order, error) {
	return s.orders.ListByUser(userID)
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders() ([]models.Order, error) {
	return s.orders.GetAll()
}

// UpdatePaymentStatus moves an order to status. Paid records transactionID,
// generating one when empty; Cancelled and Failed restock the items.
func (s *OrderService) UpdatePaymentStatus(id string, status models.PaymentStatus, transactionID string) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.ErrInvalidStatus
	}
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !order.PaymentStatus.CanTransitionTo(status) {
		return nil, fmt.Errorf("%s -> %s: %w", order.PaymentStatus, status, apperr.ErrInvalidStatusTransition)
	}

	transactionID = strings.TrimSpace(transactionID)
	if status == models.StatusPaid && transactionID == "" {
		transactionID = "TXN-" + strings.ToUpper(shortuuid.New())
	}
	if status != models.StatusPaid {
		transactionID = ""
	}

	updated, err := s.orders.TransitionStatus(order.ID, order.PaymentStatus, status, transactionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order status changed",
		zap.String("order_id", updated.OrderID),
		zap.String("from", string(order.PaymentStatus)),
		zap.String("to", string(status)),
	)
	s.publish(events.OrderStatusChanged, updated)
	return updated, nil
}

// publish is best effort; failures are logged.
func (s *OrderService) publish(eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(eventType, events.NewOrderPayload(order)); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
	}
}
