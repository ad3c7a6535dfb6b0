package receipt_test

import (
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/receipt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	order := &models.Order{
		OrderID:       "AbCdEfGh12",
		CustomerName:  "Jane Doe",
		PaymentMethod: models.PaymentCOD,
		PaymentStatus: models.StatusPending,
		Items: []models.OrderItem{
			{ProductID: "p1", Title: "Café mug", Quantity: 2, UnitPrice: 50},
			{ProductID: "p2", Title: "Teapot", Quantity: 1, UnitPrice: 30},
		},
		Amount:     130,
		Discount:   13,
		Shipping:   10,
		Tax:        6.35,
		GrandTotal: 133.35,
		Address:    models.OrderAddress{Address: "1 Main Street", City: "Springfield", PinCode: "12345", Phone: "5551234567"},
		CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	out, err := receipt.Render(order)
	require.NoError(t, err)
	assert.True(t, len(out) > 1000)
	assert.Equal(t, "%PDF", string(out[:4]))
	assert.Equal(t, "receipt-AbCdEfGh12.pdf", receipt.Filename(order))
}
