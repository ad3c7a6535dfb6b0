package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/logging"
	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	repos, closeDB, err := openRepositories(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	publisher, closeEvents := connectEvents(cfg, repos.Products, logger)
	defer closeEvents()

	svc := server.NewServices(cfg, repos, publisher, logger)
	if err := svc.Auth.EnsureAdmin(cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	app := server.New(cfg, svc, server.Options{EventsEnabled: publisher != nil}, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		errCh <- app.Listen(cfg.App.Port)
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		logger.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	if err := app.Shutdown(); err != nil {
		logger.Error("Error during Fiber shutdown", zap.Error(err))
	}
	logger.Info("Server gracefully stopped")
	return nil
}

// openRepositories returns the repositories for the configured driver and a
// func releasing the underlying connection.
func openRepositories(cfg config.DatabaseConfig, logger *zap.Logger) (server.Repositories, func(), error) {
	if cfg.Driver == "memory" {
		logger.Warn("Using in-memory repositories; data is lost on exit")
		return server.NewMemoryRepositories(), func() {}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return server.Repositories{}, nil, err
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Driver))

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Error("Error closing database", zap.Error(err))
			}
		}
	}
	return server.NewGORMRepositories(db), closeDB, nil
}

// connectEvents connects to RabbitMQ and starts the low-stock listener.
// Without RABBITMQ_URL, or when the broker is unreachable, it returns a nil
// publisher and the app runs without events.
func connectEvents(cfg *config.Config, products repositories.ProductRepository, logger *zap.Logger) (services.EventPublisher, func()) {
	noop := func() {}
	if cfg.RabbitMQ.URL == "" {
		logger.Info("RABBITMQ_URL not set; order events disabled")
		return nil, noop
	}

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, logger.Named("rabbitmq"))
	if err != nil {
		logger.Warn("RabbitMQ unavailable; order events disabled", zap.Error(err))
		return nil, noop
	}
	closeMQ := func() {
		if err := mqClient.Close(); err != nil {
			logger.Error("Error closing RabbitMQ client", zap.Error(err))
		}
	}

	listener := events.NewOrderListener(products, cfg.Catalog.LowStockThreshold, logger.Named("events"))
	if err := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
		return listener.Handle(msg.Body)
	}); err != nil {
		logger.Warn("Failed to start order event consumer", zap.Error(err))
	}
	return mqClient, closeMQ
}
