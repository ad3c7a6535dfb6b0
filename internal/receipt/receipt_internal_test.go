package receipt

import (
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTotalRows(t *testing.T) {
	noDiscount := &models.Order{Amount: 40, Shipping: 10, Tax: 2.5}
	assert.Equal(t, [][2]string{
		{"Subtotal", "40.00"},
		{"Discount", "0.00"},
		{"Shipping", "10.00"},
		{"Tax", "2.50"},
	}, totalRows(noDiscount))

	discounted := &models.Order{Amount: 120, Discount: 12, Shipping: 10, Tax: 5.9}
	assert.Equal(t, "-12.00", totalRows(discounted)[1][1])
}
