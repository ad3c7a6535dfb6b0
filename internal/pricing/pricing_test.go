package pricing_test

import (
	"testing"

	"storefront/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCompute_EndToEnd(t *testing.T) {
	totals := pricing.Compute([]pricing.Line{
		{Price: 60, Quantity: 1},
		{Price: 50, SalePrice: 30, Quantity: 2},
	})

	assert.Equal(t, 120.0, totals.Subtotal)
	assert.Equal(t, 12.0, totals.Discount)
	assert.Equal(t, 108.0, totals.SubtotalAfterDiscount)
	assert.Equal(t, 10.0, totals.Shipping)
	assert.Equal(t, 5.9, totals.Tax)
	assert.Equal(t, 123.9, totals.GrandTotal)
}

func TestCompute_DiscountThreshold(t *testing.T) {
	below := pricing.Compute([]pricing.Line{{Price: 99.99, Quantity: 1}})
	assert.Equal(t, 0.0, below.Discount)
	assert.Equal(t, 99.99, below.SubtotalAfterDiscount)

	at := pricing.Compute([]pricing.Line{{Price: 100, Quantity: 1}})
	assert.Equal(t, 10.0, at.Discount)
	assert.Equal(t, 90.0, at.SubtotalAfterDiscount)
}

func TestPolicy_ShippingThreshold(t *testing.T) {
	p := pricing.DefaultPolicy()

	assert.True(t, p.Shipping(decimal.RequireFromString("199.99")).Equal(decimal.NewFromInt(10)))
	assert.True(t, p.Shipping(decimal.RequireFromString("200.00")).IsZero())
}

func TestCompute_ShippingAfterDiscount(t *testing.T) {
	// 222.22 - 10% = 199.998, still below the free shipping threshold.
	paid := pricing.Compute([]pricing.Line{{Price: 222.22, Quantity: 1}})
	assert.Equal(t, 10.0, paid.Shipping)
	assert.Equal(t, 200.0, paid.SubtotalAfterDiscount)

	// 222.23 - 10% = 200.007.
	free := pricing.Compute([]pricing.Line{{Price: 222.23, Quantity: 1}})
	assert.Equal(t, 0.0, free.Shipping)
}

func TestCompute_EmptyCart(t *testing.T) {
	totals := pricing.Compute(nil)

	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 10.0, totals.Shipping)
	assert.Equal(t, 0.5, totals.Tax)
	assert.Equal(t, 10.5, totals.GrandTotal)
}

func TestCompute_RoundsHalfUpAtOutput(t *testing.T) {
	// 3 x 0.335 = 1.005 exactly; shipping 10 => base 11.005, tax 0.55025.
	totals := pricing.Compute([]pricing.Line{{Price: 0.335, Quantity: 3}})

	assert.Equal(t, 1.01, totals.Subtotal)
	assert.Equal(t, 0.55, totals.Tax)
	assert.Equal(t, 11.56, totals.GrandTotal)
}

func TestUnitPrice(t *testing.T) {
	assert.Equal(t, 30.0, pricing.UnitPrice(50, 30))
	assert.Equal(t, 50.0, pricing.UnitPrice(50, 0))
}
