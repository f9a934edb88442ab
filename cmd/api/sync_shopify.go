package main

import (
	"context"
	"errors"
	"time"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newSyncShopifyCommand(logger zerolog.Logger) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "sync-shopify",
		Short: "List every available product on the Shopify store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(logger)
			if err != nil {
				return err
			}
			if !cfg.ShopifyConfigured() {
				return errors.New("sync-shopify needs SHOPIFY_SHOP_NAME and SHOPIFY_ACCESS_TOKEN")
			}
			if cfg.Storage == config.StorageMemory {
				return errors.New("sync-shopify cannot read the catalog from in-memory storage")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			st, err := openStores(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close(context.Background(), logger)

			client, err := newShopifyClient(cfg, logger)
			if err != nil {
				return err
			}
			report, err := application.NewCatalogSyncService(st.catalog, client, logger).SyncCatalog(ctx)
			if err != nil {
				return err
			}
			if report.Failed > 0 {
				logger.Warn().Int("failed", report.Failed).Msg("Some products were not synced")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "give up after this long")
	return cmd
}
