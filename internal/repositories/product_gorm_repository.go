package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products, newest first.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// Find retrieves the products matching filter.
func (r *GORMProductRepository) Find(filter models.ProductFilter) ([]models.Product, error) {
	q := r.db.Model(&models.Product{})
	if len(filter.Categories) > 0 {
		q = q.Where("category IN ?", filter.Categories)
	}
	if len(filter.Brands) > 0 {
		q = q.Where("brand IN ?", filter.Brands)
	}

	var products []models.Product
	if err := q.Order(sortColumn(filter.SortBy)).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to filter products: %w", err)
	}
	return products, nil
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case models.SortPriceHighToLow:
		return "price DESC"
	case models.SortNewest:
		return "created_at DESC"
	case models.SortBestRated:
		return "rating DESC"
	default:
		return "price ASC"
	}
}

// GetByID retrieves a single product with its reviews.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Reviews", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetByIDs retrieves the existing products among ids. Missing IDs are skipped.
func (r *GORMProductRepository) GetByIDs(ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by IDs: %w", err)
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.Rating = 0
	product.Reviews = nil
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of an existing product.
// Rating and reviews are left untouched.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("title", "description", "category", "brand", "image", "price", "sale_price", "total_stock").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product", product.ID)
	}
	return nil
}

// Delete deletes a product and its reviews.
func (r *GORMProductRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews of product %s: %w", id, err)
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("product", id)
		}
		return nil
	})
}

// ListReviews returns the reviews of a product, newest first.
func (r *GORMProductRepository) ListReviews(productID string) ([]models.Review, error) {
	if _, err := r.exists(r.db, productID); err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := r.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// GetReview returns one review of a product.
func (r *GORMProductRepository) GetReview(productID, reviewID string) (*models.Review, error) {
	var review models.Review
	err := r.db.First(&review, "id = ? AND product_id = ?", reviewID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("review", reviewID)
		}
		return nil, fmt.Errorf("failed to get review %s: %w", reviewID, err)
	}
	return &review, nil
}

// CreateReview stores a review and refreshes the product rating.
func (r *GORMProductRepository) CreateReview(review *models.Review) (*models.Product, error) {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	var product models.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, review.ProductID, &product); err != nil {
			return err
		}
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return refreshRating(tx, &product)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateReview changes a review's rating and comment and refreshes the product rating.
func (r *GORMProductRepository) UpdateReview(review *models.Review) (*models.Product, error) {
	var product models.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, review.ProductID, &product); err != nil {
			return err
		}
		res := tx.Model(&models.Review{}).
			Where("id = ? AND product_id = ?", review.ID, review.ProductID).
			Select("rating", "comment").
			Updates(review)
		if res.Error != nil {
			return fmt.Errorf("failed to update review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("review", review.ID)
		}
		return refreshRating(tx, &product)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteReview removes a review and refreshes the product rating.
func (r *GORMProductRepository) DeleteReview(productID, reviewID string) (*models.Product, error) {
	var product models.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, productID, &product); err != nil {
			return err
		}
		res := tx.Delete(&models.Review{}, "id = ? AND product_id = ?", reviewID, productID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("review", reviewID)
		}
		return refreshRating(tx, &product)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GORMProductRepository) exists(db *gorm.DB, id string) (bool, error) {
	var count int64
	if err := db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up product %s: %w", id, err)
	}
	if count == 0 {
		return false, apperr.NotFound("product", id)
	}
	return true, nil
}

// lockProduct loads the product row FOR UPDATE (a no-op on SQLite, which
// serializes writers anyway).
func lockProduct(tx *gorm.DB, id string, product *models.Product) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product", id)
		}
		return fmt.Errorf("failed to lock product %s: %w", id, err)
	}
	return nil
}

// refreshRating sets the product rating to the mean of its reviews, 0 without reviews.
func refreshRating(tx *gorm.DB, product *models.Product) error {
	var rating float64
	row := tx.Model(&models.Review{}).
		Where("product_id = ?", product.ID).
		Select("COALESCE(AVG(rating), 0)").
		Row()
	if err := row.Scan(&rating); err != nil {
		return fmt.Errorf("failed to compute rating for product %s: %w", product.ID, err)
	}
	if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).UpdateColumn("rating", rating).Error; err != nil {
		return fmt.Errorf("failed to store rating for product %s: %w", product.ID, err)
	}
	product.Rating = rating
	return nil
}
