package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

func seed(t *testing.T) (*repositories.MockProductRepository, *models.Product, *models.Product) {
	t.Helper()
	repo := repositories.NewMockProductRepository()
	low := &models.Product{Title: "low", TotalStock: 2}
	high := &models.Product{Title: "high", TotalStock: 50}
	require.NoError(t, repo.Create(low))
	require.NoError(t, repo.Create(high))
	return repo, low, high
}

func TestOrderListener_LowStock(t *testing.T) {
	repo, low, high := seed(t)
	listener := events.NewOrderListener(repo, 5, zap.NewNop())

	result, err := listener.LowStock(events.OrderPayload{
		OrderID: "abc",
		Items: []events.OrderItemPayload{
			{ProductID: low.ID, Quantity: 1},
			{ProductID: high.ID, Quantity: 1},
			{ProductID: "deleted", Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, low.ID, result[0].ProductID)
	assert.Equal(t, 2, result[0].TotalStock)
}

func TestOrderListener_Handle(t *testing.T) {
	repo, low, _ := seed(t)
	listener := events.NewOrderListener(repo, 5, zap.NewNop())

	payload, err := json.Marshal(events.NewOrderPayload(&models.Order{
		ID:      "internal",
		OrderID: "abc",
		Items:   []models.OrderItem{{ProductID: low.ID, Quantity: 1}},
	}))
	require.NoError(t, err)
	body, err := json.Marshal(events.Envelope{
		EventID:   "evt-1",
		EventType: events.OrderCreated,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	assert.NoError(t, listener.Handle(body))
	assert.NoError(t, listener.Handle([]byte("not json")))
	assert.NoError(t, listener.Handle([]byte(`{"event_type":"order.status_changed","payload":{}}`)))
}
