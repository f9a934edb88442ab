package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/config"
	"fishy-friend-storefront/internal/infrastructure/pubsub"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newNotifyCommand(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Email customers about order events received from NATS",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(logger)
			if err != nil {
				return err
			}
			if cfg.NATSURL == "" {
				return errors.New("notify needs NATS_URL")
			}
			if cfg.Storage == config.StorageMemory {
				return errors.New("notify cannot read orders from in-memory storage")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStores(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close(ctx, logger)

			conn, err := nats.Connect(cfg.NATSURL, nats.Name("storefront-notify"))
			if err != nil {
				return fmt.Errorf("failed to connect to NATS: %w", err)
			}
			defer conn.Close()

			notifier := application.NewNotificationService(st.orders, st.customers, newMailer(cfg, logger), logger,
				application.NotificationOptions{SiteName: cfg.SiteName, SiteURL: cfg.SiteURL})
			return pubsub.NewNATSSubscriber(conn, logger).Run(ctx, notifier.HandleOrderEvent)
		},
	}
}
