package models

import "time"

// Product represents a product in the catalog.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"title" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Description string    `json:"description" gorm:"type:text" validate:"required,max=1000"`
	Category    string    `json:"category" gorm:"type:varchar(100);index" validate:"required"`
	Brand       string    `json:"brand" gorm:"type:varchar(50);index" validate:"required,max=50"`
	Image       string    `json:"image" validate:"required"`
	Price       float64   `json:"price" gorm:"index" validate:"gte=0"`
	SalePrice   float64   `json:"salePrice" validate:"gte=0"`
	TotalStock  int       `json:"totalStock" validate:"gte=0"`
	Rating      float64   `json:"rating"`
	Reviews     []Review  `json:"reviews,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" validate:"-"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EffectivePrice is the sale price when set, the list price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}

// Review is a user's rating of a product.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"productId" gorm:"type:varchar(36);index;not null"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index"`
	UserName  string    `json:"userName"`
	Rating    float64   `json:"rating" validate:"gte=0,lte=5"`
	Comment   string    `json:"comment" validate:"required,max=500"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product listing sort keys.
const (
	SortPriceLowToHigh = "price-lowtoHigh"
	SortPriceHighToLow = "price-hightoLow"
	SortNewest         = "newest"
	SortBestRated      = "best-rated"
)

// ProductFilter narrows a catalog listing. Empty slices match everything.
type ProductFilter struct {
	Categories []string
	Brands     []string
	SortBy     string
}
