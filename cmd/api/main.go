package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := newRootCommand(logger).Execute(); err != nil {
		logger.Fatal().Err(err).Msg("Command failed")
	}
}

func newRootCommand(logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Fishy Friend Aquatics storefront service",
		Long: `The storefront service sells fish, accessories, plants and combos online.
It serves the customer and staff REST API, settles payments from provider
webhooks, emails customers about their orders and lists the catalog on Shopify.`,
		SilenceUsage: true,
	}

	var debug bool
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.PersistentPreRun = func(*cobra.Command, []string) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	cmd.AddCommand(
		newServeCommand(logger),
		newNotifyCommand(logger),
		newSyncShopifyCommand(logger),
	)
	return cmd
}
