package services

import (
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const anonymousReviewer = "Anonymous"

// ReviewInput is the editable part of a review.
type ReviewInput struct {
	Rating  float64 `json:"rating" validate:"gte=0,lte=5"`
	Comment string  `json:"comment" validate:"required,max=500"`
}

// ProductService handles business logic related to products and their reviews.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: validation.New(),
		logger:   logger,
	}
}

// GetAllProducts retrieves all products, newest first.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// ListProducts returns the catalog narrowed and sorted by filter.
// An unknown sort key falls back to price ascending.
func (s *ProductService) ListProducts(filter models.ProductFilter) ([]models.Product, error) {
	switch filter.SortBy {
	case models.SortPriceLowToHigh, models.SortPriceHighToLow, models.SortNewest, models.SortBestRated:
	default:
		filter.SortBy = models.SortPriceLowToHigh
	}
	return s.repo.Find(filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.validateProduct(product); err != nil {
		return err
	}
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.logger.Info("product created", zap.String("product_id", product.ID))
	return nil
}

// UpdateProduct validates and stores the editable fields of a product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := s.validateProduct(product); err != nil {
		return err
	}
	return s.repo.Update(product)
}

func (s *ProductService) validateProduct(product *models.Product) error {
	product.Title = strings.TrimSpace(product.Title)
	if err := s.validate.Struct(product); err != nil {
		return apperr.InvalidFields(validation.Messages(err))
	}
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// ListReviews returns a product's reviews, newest first.
func (s *ProductService) ListReviews(productID string) ([]models.Review, error) {
	return s.repo.ListReviews(productID)
}

// AddReview stores a review by userID and returns the product with its new rating.
func (s *ProductService) AddReview(productID, userID, userName string, input ReviewInput) (*models.Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.InvalidFields(validation.Messages(err))
	}
	if strings.TrimSpace(userName) == "" {
		userName = anonymousReviewer
	}
	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}
	return s.repo.CreateReview(review)
}

// EditReview updates a review owned by userID, or any review for admins.
func (s *ProductService) EditReview(productID, reviewID, userID, role string, input ReviewInput) (*models.Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.InvalidFields(validation.Messages(err))
	}
	review, err := s.ownedReview(productID, reviewID, userID, role)
	if err != nil {
		return nil, err
	}
	review.Rating = input.Rating
	review.Comment = strings.TrimSpace(input.Comment)
	return s.repo.UpdateReview(review)
}

// DeleteReview removes a review owned by userID, or any review for admins.
func (s *ProductService) DeleteReview(productID, reviewID, userID, role string) (*models.Product, error) {
	if _, err := s.ownedReview(productID, reviewID, userID, role); err != nil {
		return nil, err
	}
	return s.repo.DeleteReview(productID, reviewID)
}

// ownedReview hides other users' reviews behind NotFound.
func (s *ProductService) ownedReview(productID, reviewID, userID, role string) (*models.Review, error) {
	review, err := s.repo.GetReview(productID, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID && role != models.RoleAdmin {
		return nil, apperr.NotFound("review", reviewID)
	}
	return review, nil
}
