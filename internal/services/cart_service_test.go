package services_test

import (
	"math"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCartFixture(t *testing.T) (*services.CartService, *repositories.MockProductRepository, *repositories.MockCartRepository) {
	t.Helper()
	products := repositories.NewMockProductRepository()
	carts := repositories.NewMockCartRepository()
	return services.NewCartService(carts, products, pricing.DefaultPolicy(), zap.NewNop()), products, carts
}

func seedProduct(t *testing.T, repo *repositories.MockProductRepository, title string, price, salePrice float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Title: title, Price: price, SalePrice: salePrice, TotalStock: stock, Image: title + ".png"}
	require.NoError(t, repo.Create(p))
	return p
}

func TestCartService_AddItemMerges(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	p := seedProduct(t, products, "mug", 20, 0, 10)

	_, err := svc.AddItem("u1", p.ID, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem("u1", p.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "mug", cart.Items[0].Title)
	assert.Equal(t, 100.0, cart.Totals.Subtotal)
	assert.Equal(t, 10.0, cart.Totals.Discount)
}

func TestCartService_AddItemRejects(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	p := seedProduct(t, products, "mug", 20, 0, 10)

	_, err := svc.AddItem("u1", p.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidQuantity)
	_, err = svc.AddItem("u1", p.ID, -2)
	assert.ErrorIs(t, err, apperr.ErrInvalidQuantity)
	_, err = svc.AddItem("u1", "missing", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCartService_LineQuantityIsBounded(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	p := seedProduct(t, products, "mug", 20, 0, 10)

	_, err := svc.AddItem("u1", p.ID, math.MaxInt)
	assert.ErrorIs(t, err, apperr.ErrInvalidQuantity)

	_, err = svc.AddItem("u1", p.ID, models.MaxLineQuantity)
	require.NoError(t, err)
	_, err = svc.AddItem("u1", p.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidQuantity)
	_, err = svc.UpdateQuantity("u1", p.ID, models.MaxLineQuantity+1)
	assert.ErrorIs(t, err, apperr.ErrInvalidQuantity)

	cart, err := svc.GetCart("u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, models.MaxLineQuantity, cart.Items[0].Quantity)
	assert.Equal(t, 19980.0, cart.Totals.Subtotal)
}

func TestCartService_QuantityUpdates(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	p := seedProduct(t, products, "mug", 20, 0, 10)

	_, err := svc.UpdateQuantity("u1", p.ID, 3)
	assert.ErrorIs(t, err, apperr.ErrLineNotFound)

	_, err = svc.AddItem("u1", p.ID, 2)
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity("u1", p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	cart, err = svc.DecreaseQuantity("u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	// zero is a removal
	cart, err = svc.UpdateQuantity("u1", p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.DecreaseQuantity("u1", p.ID)
	assert.ErrorIs(t, err, apperr.ErrLineNotFound)
}

func TestCartService_DecreaseAtOneRemoves(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	p := seedProduct(t, products, "mug", 20, 0, 10)

	_, err := svc.AddItem("u1", p.ID, 1)
	require.NoError(t, err)
	cart, err := svc.DecreaseQuantity("u1", p.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_RemoveIsIdempotent(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	p := seedProduct(t, products, "mug", 20, 0, 10)

	_, err := svc.AddItem("u1", p.ID, 1)
	require.NoError(t, err)

	first, err := svc.RemoveItem("u1", p.ID)
	require.NoError(t, err)
	second, err := svc.RemoveItem("u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCartService_GetCartPrunesDeletedProducts(t *testing.T) {
	svc, products, carts := newCartFixture(t)
	kept := seedProduct(t, products, "kept", 10, 8, 10)
	gone := seedProduct(t, products, "gone", 10, 0, 10)

	_, err := svc.AddItem("u1", kept.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem("u1", gone.ID, 1)
	require.NoError(t, err)
	require.NoError(t, products.Delete(gone.ID))

	cart, err := svc.GetCart("u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, kept.ID, cart.Items[0].ProductID)
	// sale price is the unit price
	assert.Equal(t, 8.0, cart.Totals.Subtotal)

	lines, err := carts.ListByUser("u1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCartService_LiveJoinFollowsCatalog(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	p := seedProduct(t, products, "mug", 20, 0, 10)

	_, err := svc.AddItem("u1", p.ID, 1)
	require.NoError(t, err)

	p.Price = 25
	require.NoError(t, products.Update(p))

	cart, err := svc.GetCart("u1")
	require.NoError(t, err)
	assert.Equal(t, 25.0, cart.Items[0].Price)
}

func TestCartService_EndToEndTotals(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	a := seedProduct(t, products, "a", 50, 0, 10)
	b := seedProduct(t, products, "b", 20, 0, 10)

	_, err := svc.AddItem("u1", a.ID, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem("u1", b.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, pricing.Totals{
		Subtotal:              120,
		Discount:              12,
		SubtotalAfterDiscount: 108,
		Shipping:              10,
		Tax:                   5.9,
		GrandTotal:            123.9,
	}, cart.Totals)
}

func TestCartService_ClearCart(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	p := seedProduct(t, products, "mug", 20, 0, 10)

	_, err := svc.AddItem("u1", p.ID, 2)
	require.NoError(t, err)

	cart, err := svc.ClearCart("u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	cart, err = svc.GetCart("u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Totals.Subtotal)
}

func TestCartService_RemoveProductsKeepsOthers(t *testing.T) {
	svc, products, _ := newCartFixture(t)
	a := seedProduct(t, products, "a", 10, 0, 10)
	b := seedProduct(t, products, "b", 10, 0, 10)

	_, err := svc.AddItem("u1", a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem("u1", b.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveProducts("u1", []string{a.ID, "missing"}))
	require.NoError(t, svc.RemoveProducts("u1", nil))

	cart, err := svc.GetCart("u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, b.ID, cart.Items[0].ProductID)
}
