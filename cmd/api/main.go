package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agri-mandi/internal/cache"
	"agri-mandi/internal/config"
	"agri-mandi/internal/coupon"
	"agri-mandi/internal/database"
	"agri-mandi/internal/handler"
	"agri-mandi/internal/notify"
	"agri-mandi/internal/repository"
	"agri-mandi/internal/router"
	"agri-mandi/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting agri-mandi API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Apply pending schema migrations before opening the pool
	if err := database.Migrate(cfg.Database.MigrationDSN(), cfg.Database.MigrationsPath, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize order-status cache
	var statusCache cache.StatusCache
	if cfg.Redis.Enabled {
		statusCache, err = cache.NewRedisCache(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize status cache: %w", err)
		}
	} else {
		statusCache = cache.NewNopCache()
		logger.Info().Msg("order-status cache disabled")
	}
	defer statusCache.Close()

	// Initialize order-event dispatcher
	var dispatcher notify.Dispatcher
	if cfg.Kafka.Enabled {
		dispatcher = notify.NewKafkaDispatcher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	} else {
		dispatcher = notify.NewNopDispatcher()
		logger.Info().Msg("order-event dispatching disabled")
	}
	defer dispatcher.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize coupon loader with S3 and local fallback
	fileLoader := coupon.NewFileLoader(logger)
	var couponLoader coupon.Loader

	if cfg.Coupon.S3Enabled {
		s3Loader, err := coupon.NewS3Loader(ctx, cfg.Coupon.S3Bucket, cfg.Coupon.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			couponLoader = fileLoader
		} else {
			couponLoader = coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.Coupon.S3Prefix, true, logger)
		}
	} else {
		// S3 disabled, use local file system only
		couponLoader = fileLoader
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
	}

	// Initialize coupon validator
	validatorConfig := &coupon.ValidatorConfig{FilePath: cfg.Coupon.FilePath}
	validator, err := coupon.NewValidator(ctx, validatorConfig, couponLoader, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon validator: %w", err)
	}
	defer validator.Close()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, addressRepo, validator, statusCache, dispatcher, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Initialize router
	mux := router.New(productHandler, cartHandler, orderHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
