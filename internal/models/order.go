package models

import "time"

// PaymentMethod is how an order is paid for.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "ONLINE"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

// PaymentStatus is the state of an order's payment.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "Pending"
	StatusPaid      PaymentStatus = "Paid"
	StatusFailed    PaymentStatus = "Failed"
	StatusCancelled PaymentStatus = "Cancelled"
	StatusDelivered PaymentStatus = "Delivered"
)

var transitions = map[PaymentStatus][]PaymentStatus{
	StatusPending: {StatusPaid, StatusFailed, StatusCancelled, StatusDelivered},
	StatusPaid:    {StatusDelivered, StatusCancelled},
}

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReleasesStock reports whether entering s returns the ordered units to stock.
func (s PaymentStatus) ReleasesStock() bool {
	return s == StatusCancelled || s == StatusFailed
}

// OrderItem is a snapshot of one purchased line, frozen at checkout.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderRef  string  `json:"-" gorm:"type:varchar(36);index;not null"`
	ProductID string  `json:"productId" gorm:"type:varchar(36)"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Image     string  `json:"image"`
}

// OrderAddress is a snapshot of the delivery address.
type OrderAddress struct {
	AddressID string `json:"addressId,omitempty"`
	Address   string `json:"address" validate:"required,min=5,max=200"`
	City      string `json:"city" validate:"required,min=2,max=100"`
	PinCode   string `json:"pinCode" validate:"required,pincode"`
	Phone     string `json:"phone" validate:"required,phone"`
	Notes     string `json:"notes" validate:"max=300"`
}

// SnapshotAddress copies a into an OrderAddress.
func SnapshotAddress(a *Address) OrderAddress {
	return OrderAddress{
		AddressID: a.ID,
		Address:   a.Address,
		City:      a.City,
		PinCode:   a.PinCode,
		Phone:     a.Phone,
		Notes:     a.Notes,
	}
}

// Order represents a customer order. Items, Address and totals never change
// after creation; only PaymentStatus and TransactionID do.
type Order struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID       string        `json:"orderId" gorm:"uniqueIndex;type:varchar(16);not null"`
	UserID        string        `json:"userId" gorm:"type:varchar(36);index;not null"`
	CustomerName  string        `json:"customerName"`
	Items         []OrderItem   `json:"items" gorm:"foreignKey:OrderRef;references:ID;constraint:OnDelete:CASCADE"`
	Amount        float64       `json:"amount"` // subtotal before discount
	Discount      float64       `json:"discount"`
	Shipping      float64       `json:"shipping"`
	Tax           float64       `json:"tax"`
	GrandTotal    float64       `json:"grandTotal"`
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"type:varchar(10)"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"type:varchar(16);index"`
	TransactionID string        `json:"transactionId,omitempty"`
	Address       OrderAddress  `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	CreatedAt     time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Clone returns a deep copy of o.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c
}
