package database_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/models"
)

func TestOpen_SQLiteMigrates(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	for _, model := range []interface{}{
		&models.User{}, &models.Product{}, &models.Review{}, &models.CartLine{},
		&models.Address{}, &models.Order{}, &models.OrderItem{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasColumn(&models.Order{}, "address_pin_code"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
