// Package pricing derives cart and order totals.
//
// All arithmetic runs on decimals at full precision; values are rounded to
// two places (half-up) only when a Totals is produced.
package pricing

import "github.com/shopspring/decimal"

// Policy holds the thresholds and rates used by Compute.
type Policy struct {
	DiscountThreshold     decimal.Decimal
	DiscountRate          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPolicy is 10% off from 100, free shipping from 200 (after discount),
// a flat 10.00 fee otherwise and 5% tax on goods plus shipping.
func DefaultPolicy() Policy {
	return Policy{
		DiscountThreshold:     decimal.NewFromInt(100),
		DiscountRate:          decimal.RequireFromString("0.10"),
		FreeShippingThreshold: decimal.NewFromInt(200),
		ShippingFee:           decimal.RequireFromString("10.00"),
		TaxRate:               decimal.RequireFromString("0.05"),
	}
}

// Line is the priced view of one cart or order line.
type Line struct {
	Price     float64
	SalePrice float64
	Quantity  int
}

// Totals is the rounded result of Compute.
type Totals struct {
	Subtotal              float64 `json:"subtotal"`
	Discount              float64 `json:"discount"`
	SubtotalAfterDiscount float64 `json:"subtotalAfterDiscount"`
	Shipping              float64 `json:"shipping"`
	Tax                   float64 `json:"tax"`
	GrandTotal            float64 `json:"grandTotal"`
}

// UnitPrice returns the sale price when it is set, the list price otherwise.
func UnitPrice(price, salePrice float64) float64 {
	if salePrice > 0 {
		return salePrice
	}
	return price
}

// Discount returns the discount for a subtotal.
func (p Policy) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.DiscountThreshold) {
		return subtotal.Mul(p.DiscountRate)
	}
	return decimal.Zero
}

// Shipping returns the shipping fee for a discounted subtotal.
func (p Policy) Shipping(subtotalAfterDiscount decimal.Decimal) decimal.Decimal {
	if subtotalAfterDiscount.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.ShippingFee
}

// Compute derives the totals for lines. It has no side effects.
func (p Policy) Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		unit := decimal.NewFromFloat(UnitPrice(l.Price, l.SalePrice))
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	discount := p.Discount(subtotal)
	afterDiscount := subtotal.Sub(discount)
	shipping := p.Shipping(afterDiscount)
	taxableBase := afterDiscount.Add(shipping)
	tax := taxableBase.Mul(p.TaxRate)
	grandTotal := taxableBase.Add(tax)

	return Totals{
		Subtotal:              round(subtotal),
		Discount:              round(discount),
		SubtotalAfterDiscount: round(afterDiscount),
		Shipping:              round(shipping),
		Tax:                   round(tax),
		GrandTotal:            round(grandTotal),
	}
}

// Compute applies DefaultPolicy.
func Compute(lines []Line) Totals {
	return DefaultPolicy().Compute(lines)
}

// round is half-up for the non-negative amounts handled here.
func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
