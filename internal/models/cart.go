package models

import "time"

// MaxLineQuantity bounds the quantity of a single cart line.
const MaxLineQuantity = 999

// CartLine is one (user, product, quantity) record. The composite primary key
// guarantees a single line per product in a user's cart.
type CartLine struct {
	UserID    string    `json:"userId" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"productId" gorm:"primaryKey;type:varchar(36)"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
