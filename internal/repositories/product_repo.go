package repositories

import (
	"storefront/internal/models"
)

// ProductRepository defines the interface for product and review data access.
// Review mutations recompute the product rating and return the updated product.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	Find(filter models.ProductFilter) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetByIDs(ids []string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error

	ListReviews(productID string) ([]models.Review, error)
	GetReview(productID, reviewID string) (*models.Review, error)
	CreateReview(review *models.Review) (*models.Product, error)
	UpdateReview(review *models.Review) (*models.Product, error)
	DeleteReview(productID, reviewID string) (*models.Product, error)
}
