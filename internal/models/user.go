package models

import "time"

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user of the store.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserName  string    `json:"userName" gorm:"uniqueIndex;type:varchar(30)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Role      string    `json:"role" gorm:"type:varchar(10);default:user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
