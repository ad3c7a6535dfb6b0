package services_test

import (
	"fmt"
	"sync"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(eventType string, payload interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

type orderFixture struct {
	orders    *services.OrderService
	carts     *services.CartService
	addresses *services.AddressService
	products  *repositories.MockProductRepository
	publisher *MockPublisher
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	products := repositories.NewMockProductRepository()
	carts := repositories.NewMockCartRepository()
	addresses := repositories.NewMockAddressRepository()
	orders := repositories.NewMockOrderRepository(products)
	publisher := new(MockPublisher)
	publisher.On("PublishEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	logger := zap.NewNop()
	return &orderFixture{
		orders:    services.NewOrderService(orders, products, carts, addresses, pricing.DefaultPolicy(), publisher, logger),
		carts:     services.NewCartService(carts, products, pricing.DefaultPolicy(), logger),
		addresses: services.NewAddressService(addresses, logger),
		products:  products,
		publisher: publisher,
	}
}

func inlineAddress() *models.OrderAddress {
	return &models.OrderAddress{Address: "221B Baker Street", City: "London", PinCode: "NW16XE", Phone: "+441234567890"}
}

func checkout(method models.PaymentMethod) services.PlaceOrderInput {
	return services.PlaceOrderInput{CustomerName: "Jane Doe", Address: inlineAddress(), PaymentMethod: method}
}

func TestOrderService_PlaceOrder(t *testing.T) {
	f := newOrderFixture(t)
	a := seedProduct(t, f.products, "a", 50, 0, 10)
	b := seedProduct(t, f.products, "b", 25, 20, 5)

	_, err := f.carts.AddItem("u1", a.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem("u1", b.ID, 1)
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder("u1", checkout(models.PaymentCOD))
	require.NoError(t, err)

	assert.Len(t, order.OrderID, 10)
	assert.Equal(t, models.StatusPending, order.PaymentStatus)
	assert.Equal(t, "Jane Doe", order.CustomerName)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 20.0, order.Items[1].UnitPrice)
	assert.Equal(t, 120.0, order.Amount)
	assert.Equal(t, 12.0, order.Discount)
	assert.Equal(t, 10.0, order.Shipping)
	assert.Equal(t, 5.9, order.Tax)
	assert.Equal(t, 123.9, order.GrandTotal)

	got, err := f.products.GetByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.TotalStock)

	// the cart is left for the caller to clear
	cart, err := f.carts.GetCart("u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	f.publisher.AssertCalled(t, "PublishEvent", events.OrderCreated, mock.MatchedBy(func(p events.OrderPayload) bool {
		return p.OrderID == order.OrderID && len(p.Items) == 2
	}))
}

func TestOrderService_PlaceOrderFromAddressBook(t *testing.T) {
	f := newOrderFixture(t)
	p := seedProduct(t, f.products, "a", 50, 0, 10)
	_, err := f.carts.AddItem("u1", p.ID, 1)
	require.NoError(t, err)

	saved, err := f.addresses.AddAddress("u1", validAddress())
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder("u1", services.PlaceOrderInput{
		CustomerName:  "Jane",
		AddressID:     saved.ID,
		PaymentMethod: models.PaymentOnline,
	})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, order.Address.AddressID)
	assert.Equal(t, "London", order.Address.City)
	assert.Equal(t, models.StatusPending, order.PaymentStatus)

	// someone else's address book entry is not usable
	_, err = f.carts.AddItem("u2", p.ID, 1)
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder("u2", services.PlaceOrderInput{
		CustomerName:  "Mallory",
		AddressID:     saved.ID,
		PaymentMethod: models.PaymentCOD,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidAddress)
}

func TestOrderService_PlaceOrderPreconditions(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.orders.PlaceOrder("u1", checkout(models.PaymentCOD))
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)

	p := seedProduct(t, f.products, "a", 50, 0, 10)
	_, err = f.carts.AddItem("u1", p.ID, 1)
	require.NoError(t, err)

	noName := checkout(models.PaymentCOD)
	noName.CustomerName = "  "
	_, err = f.orders.PlaceOrder("u1", noName)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	noAddress := checkout(models.PaymentCOD)
	noAddress.Address = nil
	_, err = f.orders.PlaceOrder("u1", noAddress)
	assert.ErrorIs(t, err, apperr.ErrInvalidAddress)

	badAddress := checkout(models.PaymentCOD)
	badAddress.Address.PinCode = "!"
	_, err = f.orders.PlaceOrder("u1", badAddress)
	assert.ErrorIs(t, err, apperr.ErrInvalidAddress)

	_, err = f.orders.PlaceOrder("u1", checkout("CARD"))
	assert.ErrorIs(t, err, apperr.ErrInvalidPaymentMethod)

	got, err := f.products.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.TotalStock)
	f.publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

func TestOrderService_InsufficientStockDeductsNothing(t *testing.T) {
	f := newOrderFixture(t)
	plenty := seedProduct(t, f.products, "plenty", 10, 0, 10)
	scarce := seedProduct(t, f.products, "scarce", 10, 0, 1)

	_, err := f.carts.AddItem("u1", plenty.ID, 3)
	require.NoError(t, err)
	_, err = f.carts.AddItem("u1", scarce.ID, 2)
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder("u1", checkout(models.PaymentCOD))
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	e, _ := apperr.As(err)
	assert.Equal(t, scarce.ID, e.Subject)

	got, err := f.products.GetByID(plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.TotalStock)

	orders, err := f.orders.ListUserOrders("u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_ConcurrentCheckoutOfLastUnit(t *testing.T) {
	f := newOrderFixture(t)
	last := seedProduct(t, f.products, "last", 10, 0, 1)

	const buyers = 10
	for i := 0; i < buyers; i++ {
		_, err := f.carts.AddItem(fmt.Sprintf("u%d", i), last.ID, 1)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orders.PlaceOrder(fmt.Sprintf("u%d", i), checkout(models.PaymentCOD))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)

	got, err := f.products.GetByID(last.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalStock)
}

func TestOrderService_OrderImmutableAfterPriceEdit(t *testing.T) {
	f := newOrderFixture(t)
	p := seedProduct(t, f.products, "a", 50, 0, 10)
	_, err := f.carts.AddItem("u1", p.ID, 1)
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder("u1", checkout(models.PaymentCOD))
	require.NoError(t, err)

	p.Price = 80
	require.NoError(t, f.products.Update(p))

	got, err := f.orders.GetOrder("u1", models.RoleUser, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Items[0].UnitPrice)
	assert.Equal(t, order.GrandTotal, got.GrandTotal)
}

func TestOrderService_GetOrderOwnership(t *testing.T) {
	f := newOrderFixture(t)
	p := seedProduct(t, f.products, "a", 50, 0, 10)
	_, err := f.carts.AddItem("u1", p.ID, 1)
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder("u1", checkout(models.PaymentCOD))
	require.NoError(t, err)

	_, err = f.orders.GetOrder("u2", models.RoleUser, order.OrderID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	byInternal, err := f.orders.GetOrder("admin", models.RoleAdmin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, byInternal.OrderID)

	all, err := f.orders.ListOrders()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOrderService_RetriesOrderIDCollision(t *testing.T) {
	products := repositories.NewMockProductRepository()
	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository(products)
	p := seedProduct(t, products, "a", 10, 0, 10)

	svc := services.NewOrderService(orders, products, carts, repositories.NewMockAddressRepository(), pricing.DefaultPolicy(), nil, zap.NewNop())
	ids := []string{"SAMEID0001", "SAMEID0001", "OTHERID002"}
	services.SetOrderIDGenerator(svc, func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	})

	require.NoError(t, carts.AddQuantity("u1", p.ID, 1))
	first, err := svc.PlaceOrder("u1", checkout(models.PaymentCOD))
	require.NoError(t, err)
	assert.Equal(t, "SAMEID0001", first.OrderID)

	second, err := svc.PlaceOrder("u1", checkout(models.PaymentCOD))
	require.NoError(t, err)
	assert.Equal(t, "OTHERID002", second.OrderID)
}

func TestOrderService_UpdatePaymentStatus(t *testing.T) {
	f := newOrderFixture(t)
	p := seedProduct(t, f.products, "a", 50, 0, 10)
	_, err := f.carts.AddItem("u1", p.ID, 4)
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder("u1", checkout(models.PaymentOnline))
	require.NoError(t, err)

	_, err = f.orders.UpdatePaymentStatus(order.OrderID, "Shipped", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidStatus)

	paid, err := f.orders.UpdatePaymentStatus(order.OrderID, models.StatusPaid, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.PaymentStatus)
	assert.NotEmpty(t, paid.TransactionID)

	_, err = f.orders.UpdatePaymentStatus(order.OrderID, models.StatusFailed, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidStatusTransition)

	cancelled, err := f.orders.UpdatePaymentStatus(order.ID, models.StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.PaymentStatus)

	got, err := f.products.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.TotalStock)

	_, err = f.orders.UpdatePaymentStatus(order.ID, models.StatusDelivered, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidStatusTransition)

	f.publisher.AssertCalled(t, "PublishEvent", events.OrderStatusChanged, mock.Anything)
}

func TestOrderService_PublishFailureIsNotFatal(t *testing.T) {
	products := repositories.NewMockProductRepository()
	carts := repositories.NewMockCartRepository()
	publisher := new(MockPublisher)
	publisher.On("PublishEvent", events.OrderCreated, mock.Anything).Return(fmt.Errorf("broker down")).Once()

	svc := services.NewOrderService(repositories.NewMockOrderRepository(products), products, carts,
		repositories.NewMockAddressRepository(), pricing.DefaultPolicy(), publisher, zap.NewNop())
	p := seedProduct(t, products, "a", 10, 0, 10)
	require.NoError(t, carts.AddQuantity("u1", p.ID, 1))

	order, err := svc.PlaceOrder("u1", checkout(models.PaymentCOD))
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderID)
	publisher.AssertExpectations(t)
}
