package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/application/webhook_handlers"
	"fishy-friend-storefront/internal/config"
	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/infrastructure/api"
	"fishy-friend-storefront/internal/infrastructure/metrics"
	"fishy-friend-storefront/internal/infrastructure/payments"
	"fishy-friend-storefront/internal/infrastructure/pubsub"
	"fishy-friend-storefront/internal/infrastructure/shopify"
	"fishy-friend-storefront/internal/ports"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCommand(logger zerolog.Logger) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(logger)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func newPaymentRegistry(cfg *config.Config, logger zerolog.Logger) (*application.PaymentRegistry, error) {
	providers := []ports.PaymentProvider{payments.NewMock(cfg.MockWebhookSecret, logger)}
	if cfg.RazorpayConfigured() {
		razorpay, err := payments.NewRazorpay(payments.RazorpayConfig{
			KeyID:         cfg.RazorpayKeyID,
			KeySecret:     cfg.RazorpayKeySecret,
			WebhookSecret: cfg.RazorpayWebhookSecret,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Razorpay: %w", err)
		}
		providers = append(providers, razorpay)
	}
	if cfg.StripeConfigured() {
		stripe, err := payments.NewStripe(payments.StripeConfig{
			SecretKey:      cfg.StripeSecretKey,
			PublishableKey: cfg.StripePublishableKey,
			WebhookSecret:  cfg.StripeWebhookSecret,
		}, nil, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Stripe: %w", err)
		}
		providers = append(providers, stripe)
	}
	return application.NewPaymentRegistry(cfg.PaymentProvider, providers...)
}

func newShopifyClient(cfg *config.Config, logger zerolog.Logger) (ports.ShopifyClient, error) {
	return shopify.NewClient(shopify.Config{
		APIKey:      cfg.ShopifyAPIKey,
		APISecret:   cfg.ShopifyAPISecret,
		ShopName:    cfg.ShopifyShopName,
		AccessToken: cfg.ShopifyAccessToken,
	}, shopify.DefaultRetryConfig(), logger)
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background(), logger)

	prom := metrics.NewPrometheus()

	// Services publish to the in-process bus; it fans out to NATS or to the
	// local notifier. Subscribers outlive the signal context so events raised
	// by requests still in flight during shutdown are delivered.
	bus := pubsub.NewOrderPubSub(logger)
	mailer := newMailer(cfg, logger)
	busCtx := context.WithoutCancel(ctx)
	var relayed <-chan struct{}

	var conn *nats.Conn
	if cfg.NATSURL != "" {
		conn, err = nats.Connect(cfg.NATSURL, nats.Name("storefront-api"))
		if err != nil {
			bus.Close()
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		relayed = pubsub.Forward(busCtx, bus, pubsub.NewNATSPublisher(conn, logger), logger)
		logger.Info().Str("url", cfg.NATSURL).Msg("Forwarding order events to NATS")
	} else {
		notifier := application.NewNotificationService(st.orders, st.customers, mailer, logger,
			application.NotificationOptions{SiteName: cfg.SiteName, SiteURL: cfg.SiteURL})
		channel := bus.Subscribe(busCtx, &pubsub.OrderEventFilter{
			Types: []domain.OrderEventType{domain.EventOrderPaid, domain.EventOrderCancelled},
		})
		done := make(chan struct{})
		go func() {
			defer close(done)
			pubsub.Consume(busCtx, channel, notifier.HandleOrderEvent, logger)
		}()
		relayed = done
		logger.Info().Msg("NATS_URL not set, sending notifications in-process")
	}
	// The bus closes first so buffered events reach NATS before the
	// connection drains.
	defer func() {
		bus.Close()
		<-relayed
		if conn != nil {
			if err := conn.Drain(); err != nil {
				logger.Error().Err(err).Msg("Failed to drain NATS connection")
			}
		}
	}()

	registry, err := newPaymentRegistry(cfg, logger)
	if err != nil {
		return err
	}

	// Initialize webhook dispatcher and register handlers
	dispatcher := application.NewWebhookDispatcher(logger)
	paymentSvc := application.NewPaymentService(st.orders, st.paymentEvents, st.idempotency, registry, dispatcher, bus, prom, logger,
		application.PaymentOptions{UPIID: cfg.UPIID, PayeeName: cfg.SiteName})
	dispatcher.RegisterHandler(webhook_handlers.NewPaymentCapturedHandler(logger, paymentSvc))
	dispatcher.RegisterHandler(webhook_handlers.NewPaymentFailedHandler(logger, paymentSvc))
	dispatcher.RegisterHandler(webhook_handlers.NewRefundHandler(logger, paymentSvc))

	// Stock changes made through the catalog raise staff alerts.
	alerts := application.NewStockAlertService(st.stockAlerts, cfg.LowStockThreshold, logger)
	catalog := alerts.Watch(st.catalog)

	shipping := application.NewShippingService(st.shipping, logger)
	svc := api.Services{
		Catalog:   application.NewCatalogService(catalog, logger),
		Cart:      application.NewCartService(st.carts, catalog, logger),
		Checkout:  application.NewCheckoutService(st.carts, catalog, st.coupons, st.orders, st.sessions, shipping, bus, prom, logger),
		Shipping:  shipping,
		Coupons:   application.NewCouponService(st.coupons, logger),
		Orders:    application.NewOrderService(st.orders, catalog, st.customers, bus, logger),
		Payments:  paymentSvc,
		Reviews:   application.NewReviewService(st.reviews, st.orders, logger),
		Customers: application.NewCustomerService(st.customers, logger),
		Blog:      application.NewBlogService(st.blog, logger),
		Alerts:    alerts,
		Staff:     application.NewStaffService(st.customers, mailer, cfg.SiteName, logger),
	}
	if cfg.ShopifyConfigured() {
		client, err := newShopifyClient(cfg, logger)
		if err != nil {
			return err
		}
		svc.Sync = application.NewCatalogSyncService(st.catalog, client, logger)
	}
	if cfg.StaffTokenHash == "" {
		logger.Warn().Msg("STAFF_TOKEN_HASH not set, staff routes are disabled")
	}

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: api.NewRouter(svc, api.RouterConfig{
			StaffTokenHash: cfg.StaffTokenHash,
			SwaggerFile:    cfg.SwaggerFile,
			Metrics:        prom,
		}, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("storage", cfg.Storage).
			Str("paymentProvider", cfg.PaymentProvider).
			Msg("Starting API server")
		logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
