package services

import (
	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// CartItem is a cart line joined with the product's current catalog data.
type CartItem struct {
	ProductID  string  `json:"productId"`
	Title      string  `json:"title"`
	Image      string  `json:"image"`
	Price      float64 `json:"price"`
	SalePrice  float64 `json:"salePrice"`
	Quantity   int     `json:"quantity"`
	TotalStock int     `json:"totalStock"`
}

// CartView is a user's cart with its totals.
type CartView struct {
	Items  []CartItem     `json:"items"`
	Totals pricing.Totals `json:"totals"`
}

// CartService handles business logic for carts.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	policy   pricing.Policy
	logger   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, policy pricing.Policy, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		policy:   policy,
		logger:   logger,
	}
}

// AddItem adds quantity units of a product, merging into an existing line.
// A line never holds more than models.MaxLineQuantity units.
func (s *CartService) AddItem(userID, productID string, quantity int) (*CartView, error) {
	if quantity < 1 || quantity > models.MaxLineQuantity {
		return nil, apperr.ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(productID); err != nil {
		return nil, err
	}
	if err := s.carts.AddQuantity(userID, productID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// UpdateQuantity sets a line's quantity; anything below one removes the line.
func (s *CartService) UpdateQuantity(userID, productID string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return s.RemoveItem(userID, productID)
	}
	if quantity > models.MaxLineQuantity {
		return nil, apperr.ErrInvalidQuantity
	}
	if err := s.carts.SetQuantity(userID, productID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// DecreaseQuantity lowers a line by one unit, removing it at one.
func (s *CartService) DecreaseQuantity(userID, productID string) (*CartView, error) {
	if err := s.carts.Decrement(userID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// RemoveItem deletes a line. Removing an absent line succeeds.
func (s *CartService) RemoveItem(userID, productID string) (*CartView, error) {
	if err := s.carts.Remove(userID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// RemoveProducts deletes the lines of productIDs, leaving the rest of the cart.
func (s *CartService) RemoveProducts(userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	return s.carts.RemoveProducts(userID, productIDs)
}

// ClearCart removes every line.
func (s *CartService) ClearCart(userID string) (*CartView, error) {
	if err := s.carts.Clear(userID); err != nil {
		return nil, err
	}
	return s.view(nil), nil
}

// GetCart returns the cart joined with live product data. Lines whose product
// no longer exists are pruned.
func (s *CartService) GetCart(userID string) (*CartView, error) {
	lines, err := s.carts.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	items, missing, err := s.join(lines)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		if err := s.carts.RemoveProducts(userID, missing); err != nil {
			s.logger.Warn("failed to prune cart", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return s.view(items), nil
}

// join enriches lines with catalog data, keeping line order, and reports the
// product IDs that no longer exist.
func (s *CartService) join(lines []models.CartLine) ([]CartItem, []string, error) {
	if len(lines) == 0 {
		return nil, nil, nil
	}
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.GetByIDs(ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]CartItem, 0, len(lines))
	var missing []string
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			missing = append(missing, l.ProductID)
			continue
		}
		items = append(items, CartItem{
			ProductID:  p.ID,
			Title:      p.Title,
			Image:      p.Image,
			Price:      p.Price,
			SalePrice:  p.SalePrice,
			Quantity:   l.Quantity,
			TotalStock: p.TotalStock,
		})
	}
	return items, missing, nil
}

func (s *CartService) view(items []CartItem) *CartView {
	if items == nil {
		items = []CartItem{}
	}
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{Price: it.Price, SalePrice: it.SalePrice, Quantity: it.Quantity})
	}
	return &CartView{Items: items, Totals: s.policy.Compute(lines)}
}
