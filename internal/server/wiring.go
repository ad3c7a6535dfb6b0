package server

import (
	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories groups the storage implementations.
type Repositories struct {
	Users     repositories.UserRepository
	Products  repositories.ProductRepository
	Carts     repositories.CartRepository
	Addresses repositories.AddressRepository
	Orders    repositories.OrderRepository
}

// NewGORMRepositories returns repositories backed by db.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:     repositories.NewGORMUserRepository(db),
		Products:  repositories.NewGORMProductRepository(db),
		Carts:     repositories.NewGORMCartRepository(db),
		Addresses: repositories.NewGORMAddressRepository(db),
		Orders:    repositories.NewGORMOrderRepository(db),
	}
}

// NewMemoryRepositories returns in-memory repositories; data is lost on exit.
func NewMemoryRepositories() Repositories {
	products := repositories.NewMockProductRepository()
	return Repositories{
		Users:     repositories.NewMockUserRepository(),
		Products:  products,
		Carts:     repositories.NewMockCartRepository(),
		Addresses: repositories.NewMockAddressRepository(),
		Orders:    repositories.NewMockOrderRepository(products),
	}
}

// Services groups the business services used by the handlers.
type Services struct {
	Auth      *services.AuthService
	Products  *services.ProductService
	Carts     *services.CartService
	Addresses *services.AddressService
	Orders    *services.OrderService
}

// NewServices builds the services on top of repos. publisher may be nil.
func NewServices(cfg *config.Config, repos Repositories, publisher services.EventPublisher, logger *zap.Logger) Services {
	return Services{
		Auth:      services.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.TTL, logger.Named("auth")),
		Products:  services.NewProductService(repos.Products, logger.Named("products")),
		Carts:     services.NewCartService(repos.Carts, repos.Products, cfg.Pricing, logger.Named("cart")),
		Addresses: services.NewAddressService(repos.Addresses, logger.Named("address")),
		Orders: services.NewOrderService(
			repos.Orders, repos.Products, repos.Carts, repos.Addresses,
			cfg.Pricing, publisher, logger.Named("orders"),
		),
	}
}
