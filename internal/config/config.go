package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"storefront/internal/pricing"
)

// Config holds the runtime settings, grouped per concern.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	RabbitMQ RabbitMQConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Pricing  pricing.Policy
}

type AppConfig struct {
	Port        string
	Env         string
	FrontendURL string
}

type DatabaseConfig struct {
	Driver       string // postgres, sqlite or memory
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type RabbitMQConfig struct {
	URL string
}

type AuthConfig struct {
	RateLimit     float64 // requests per second per client IP
	RateBurst     int
	AdminEmail    string
	AdminPassword string
}

type CatalogConfig struct {
	LowStockThreshold int
}

// DefaultJWTSecret is the placeholder secret, accepted in development only.
const DefaultJWTSecret = "change-me"

// ErrInsecureSecret rejects an empty or placeholder JWT secret outside development.
var ErrInsecureSecret = errors.New("JWT_SECRET must be set to a non-default value outside development")

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")

	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=storefront port=5432 sslmode=disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_TTL", "168h")

	v.SetDefault("RABBITMQ_URL", "")

	v.SetDefault("AUTH_RATE_LIMIT", 5.0)
	v.SetDefault("AUTH_RATE_BURST", 10)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetDefault("LOW_STOCK_THRESHOLD", 5)

	v.SetDefault("PRICING_DISCOUNT_THRESHOLD", "100")
	v.SetDefault("PRICING_DISCOUNT_RATE", "0.10")
	v.SetDefault("PRICING_FREE_SHIPPING_THRESHOLD", "200")
	v.SetDefault("PRICING_SHIPPING_FEE", "10.00")
	v.SetDefault("PRICING_TAX_RATE", "0.05")
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	policy, err := pricingPolicy(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Port:        v.GetString("APP_PORT"),
			Env:         v.GetString("APP_ENV"),
			FrontendURL: v.GetString("FRONTEND_URL"),
		},
		Database: DatabaseConfig{
			Driver:       v.GetString("DATABASE_DRIVER"),
			DSN:          v.GetString("DATABASE_DSN"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		RabbitMQ: RabbitMQConfig{URL: v.GetString("RABBITMQ_URL")},
		Auth: AuthConfig{
			RateLimit:     v.GetFloat64("AUTH_RATE_LIMIT"),
			RateBurst:     v.GetInt("AUTH_RATE_BURST"),
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
		},
		Catalog: CatalogConfig{LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD")},
		Pricing: policy,
	}

	if !cfg.IsDevelopment() {
		secret := strings.TrimSpace(cfg.JWT.Secret)
		if secret == "" || secret == DefaultJWTSecret {
			return nil, &InvalidValueError{Key: "JWT_SECRET", Err: ErrInsecureSecret}
		}
	}
	return cfg, nil
}

func pricingPolicy(v *viper.Viper) (pricing.Policy, error) {
	var p pricing.Policy
	fields := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"PRICING_DISCOUNT_THRESHOLD", &p.DiscountThreshold},
		{"PRICING_DISCOUNT_RATE", &p.DiscountRate},
		{"PRICING_FREE_SHIPPING_THRESHOLD", &p.FreeShippingThreshold},
		{"PRICING_SHIPPING_FEE", &p.ShippingFee},
		{"PRICING_TAX_RATE", &p.TaxRate},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(v.GetString(f.key))
		if err != nil {
			return pricing.Policy{}, &InvalidValueError{Key: f.key, Err: err}
		}
		*f.dst = d
	}
	return p, nil
}

// InvalidValueError reports a configuration key that could not be parsed.
type InvalidValueError struct {
	Key string
	Err error
}

func (e *InvalidValueError) Error() string {
	return "invalid value for " + e.Key + ": " + e.Err.Error()
}

func (e *InvalidValueError) Unwrap() error { return e.Err }

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
