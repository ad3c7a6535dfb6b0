package models

import "time"

// MaxAddresses is the number of addresses a user may keep.
const MaxAddresses = 3

// Address is a delivery address owned by a user.
type Address struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	Address   string    `json:"address" gorm:"type:varchar(200)" validate:"required,min=5,max=200"`
	City      string    `json:"city" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	PinCode   string    `json:"pinCode" gorm:"type:varchar(10)" validate:"required,pincode"`
	Phone     string    `json:"phone" gorm:"type:varchar(15)" validate:"required,phone"`
	Notes     string    `json:"notes" gorm:"type:varchar(300)" validate:"max=300"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}
