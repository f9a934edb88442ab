package main

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/config"
	"fishy-friend-storefront/internal/infrastructure/cache"
	"fishy-friend-storefront/internal/infrastructure/mail"
	"fishy-friend-storefront/internal/infrastructure/repository"
	"fishy-friend-storefront/internal/infrastructure/repository/memory"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// stores holds the storage adapters selected by STORAGE and REDIS_URL.
type stores struct {
	catalog       ports.CatalogRepository
	carts         ports.CartRepository
	coupons       ports.CouponRepository
	orders        ports.OrderRepository
	paymentEvents ports.PaymentEventRepository
	reviews       ports.ReviewRepository
	customers     ports.CustomerRepository
	shipping      ports.ShippingSettingsRepository
	blog          ports.BlogRepository
	stockAlerts   ports.StockAlertRepository
	idempotency   ports.IdempotencyStore
	sessions      ports.CheckoutSessionStore

	closers []func(context.Context) error
}

func (s *stores) Close(ctx context.Context, logger zerolog.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to close storage connection")
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	s := &stores{}

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		s.catalog = memory.NewCatalogRepository()
		s.carts = memory.NewCartRepository()
		s.coupons = memory.NewCouponRepository()
		s.orders = memory.NewOrderRepository()
		s.paymentEvents = memory.NewPaymentEventRepository()
		s.reviews = memory.NewReviewRepository()
		s.customers = memory.NewCustomerRepository()
		s.shipping = memory.NewShippingSettingsRepository()
		s.blog = memory.NewBlogRepository()
		s.stockAlerts = memory.NewStockAlertRepository()
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		s.closers = append(s.closers, client.Disconnect)
		if err := client.Ping(connectCtx, nil); err != nil {
			s.Close(ctx, logger)
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}

		repos := repository.NewMongoRepositories(client.Database(cfg.MongoDatabase))
		if err := repos.EnsureIndexes(connectCtx); err != nil {
			s.Close(ctx, logger)
			return nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
		s.catalog = repos.Catalog
		s.carts = repos.Carts
		s.coupons = repos.Coupons
		s.orders = repos.Orders
		s.paymentEvents = repos.PaymentEvents
		s.reviews = repos.Reviews
		s.customers = repos.Customers
		s.shipping = repos.Shipping
		s.blog = repos.Blog
		s.stockAlerts = repos.StockAlerts
		logger.Info().Str("database", cfg.MongoDatabase).Msg("Connected to MongoDB")
	}

	if cfg.RedisURL == "" {
		if cfg.Storage == config.StorageMongo {
			logger.Warn().Msg("REDIS_URL not set, webhook idempotency and coupon sessions are per-process")
		}
		s.idempotency = memory.NewIdempotencyStore()
		s.sessions = memory.NewSessionStore()
		return s, nil
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		s.Close(ctx, logger)
		return nil, err
	}
	s.closers = append(s.closers, func(context.Context) error { return rdb.Close() })
	s.idempotency = cache.NewIdempotencyStore(rdb)
	s.sessions = cache.NewSessionStore(rdb)
	logger.Info().Msg("Connected to Redis")
	return s, nil
}

func newMailer(cfg *config.Config, logger zerolog.Logger) ports.Mailer {
	if !cfg.SMTPConfigured() {
		logger.Warn().Msg("SMTP_HOST not set, emails are logged instead of sent")
		return mail.NewLogMailer(logger)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)
}
