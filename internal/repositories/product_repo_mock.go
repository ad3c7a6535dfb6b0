package repositories

import (
	"sort"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	reviews  map[string][]models.Review
	order    []string
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
		reviews:  make(map[string][]models.Review),
	}
}

// GetAll returns all products, newest first.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	return r.Find(models.ProductFilter{SortBy: models.SortNewest})
}

// Find returns the products matching filter.
func (r *MockProductRepository) Find(filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	// newest first, so that stable sorts keep recency as the tie-breaker
	for i := len(r.order) - 1; i >= 0; i-- {
		p := r.products[r.order[i]]
		if !matches(filter.Categories, p.Category) || !matches(filter.Brands, p.Brand) {
			continue
		}
		p.Reviews = nil
		productList = append(productList, p)
	}

	switch filter.SortBy {
	case models.SortNewest:
	case models.SortPriceHighToLow:
		sort.SliceStable(productList, func(i, j int) bool { return productList[i].Price > productList[j].Price })
	case models.SortBestRated:
		sort.SliceStable(productList, func(i, j int) bool { return productList[i].Rating > productList[j].Rating })
	default:
		sort.SliceStable(productList, func(i, j int) bool { return productList[i].Price < productList[j].Price })
	}
	return productList, nil
}

func matches(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// GetByID returns a product by its ID, with its reviews.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id)
	}
	product.Reviews = r.reviewsNewestFirst(id)
	return &product, nil
}

// GetByIDs returns the existing products among ids.
func (r *MockProductRepository) GetByIDs(ids []string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			p.Reviews = nil
			productList = append(productList, p)
		}
	}
	return productList, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	product.Rating = 0
	product.Reviews = nil
	r.products[product.ID] = *product
	r.order = append(r.order, product.ID)
	return nil
}

// Update modifies the editable fields of an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperr.NotFound("product", product.ID)
	}
	existing.Title = product.Title
	existing.Description = product.Description
	existing.Category = product.Category
	existing.Brand = product.Brand
	existing.Image = product.Image
	existing.Price = product.Price
	existing.SalePrice = product.SalePrice
	existing.TotalStock = product.TotalStock
	existing.UpdatedAt = time.Now()
	r.products[product.ID] = existing
	return nil
}

// Delete removes a product and its reviews.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperr.NotFound("product", id)
	}
	delete(r.products, id)
	delete(r.reviews, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListReviews returns a product's reviews, newest first.
func (r *MockProductRepository) ListReviews(productID string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.products[productID]; !ok {
		return nil, apperr.NotFound("product", productID)
	}
	return r.reviewsNewestFirst(productID), nil
}

// GetReview returns one review of a product.
func (r *MockProductRepository) GetReview(productID, reviewID string) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rv := range r.reviews[productID] {
		if rv.ID == reviewID {
			return &rv, nil
		}
	}
	return nil, apperr.NotFound("review", reviewID)
}

// CreateReview stores a review and refreshes the product rating.
func (r *MockProductRepository) CreateReview(review *models.Review) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[review.ProductID]; !ok {
		return nil, apperr.NotFound("product", review.ProductID)
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	now := time.Now()
	review.CreatedAt, review.UpdatedAt = now, now
	r.reviews[review.ProductID] = append(r.reviews[review.ProductID], *review)
	return r.refreshRating(review.ProductID), nil
}

// UpdateReview changes a review's rating and comment and refreshes the product rating.
func (r *MockProductRepository) UpdateReview(review *models.Review) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[review.ProductID]; !ok {
		return nil, apperr.NotFound("product", review.ProductID)
	}
	list := r.reviews[review.ProductID]
	for i := range list {
		if list[i].ID == review.ID {
			list[i].Rating = review.Rating
			list[i].Comment = review.Comment
			list[i].UpdatedAt = time.Now()
			return r.refreshRating(review.ProductID), nil
		}
	}
	return nil, apperr.NotFound("review", review.ID)
}

// DeleteReview removes a review and refreshes the product rating.
func (r *MockProductRepository) DeleteReview(productID, reviewID string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[productID]; !ok {
		return nil, apperr.NotFound("product", productID)
	}
	list := r.reviews[productID]
	for i := range list {
		if list[i].ID == reviewID {
			r.reviews[productID] = append(list[:i], list[i+1:]...)
			return r.refreshRating(productID), nil
		}
	}
	return nil, apperr.NotFound("review", reviewID)
}

// AdjustStock applies delta to each product's stock, all or nothing. A
// negative delta that would take stock below zero fails with
// apperr.InsufficientStock and leaves every product unchanged.
func (r *MockProductRepository) AdjustStock(deltas map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p, ok := r.products[id]
		if !ok {
			if deltas[id] < 0 {
				return apperr.NotFound("product", id)
			}
			continue
		}
		if p.TotalStock+deltas[id] < 0 {
			return apperr.InsufficientStock(id)
		}
	}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			p.TotalStock += deltas[id]
			r.products[id] = p
		}
	}
	return nil
}

func (r *MockProductRepository) reviewsNewestFirst(productID string) []models.Review {
	list := r.reviews[productID]
	out := make([]models.Review, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out
}

// refreshRating must be called with the write lock held.
func (r *MockProductRepository) refreshRating(productID string) *models.Product {
	p := r.products[productID]
	list := r.reviews[productID]
	p.Rating = 0
	if len(list) > 0 {
		var sum float64
		for _, rv := range list {
			sum += rv.Rating
		}
		p.Rating = sum / float64(len(list))
	}
	r.products[productID] = p
	p.Reviews = r.reviewsNewestFirst(productID)
	return &p
}
