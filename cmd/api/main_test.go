package main

import (
	"testing"

	"fishy-friend-storefront/internal/config"
	"fishy-friend-storefront/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand(zerolog.Nop())
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "notify", "sync-shopify"}, names)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("port"))
}

func TestPaymentRegistryFromConfig(t *testing.T) {
	cfg, err := config.FromEnv(func(key string) string {
		return map[string]string{"STRIPE_SECRET_KEY": "sk_test_123"}[key]
	})
	require.NoError(t, err)

	registry, err := newPaymentRegistry(cfg, zerolog.Nop())
	require.NoError(t, err)

	def, err := registry.Get("")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderStripe, def.Name())

	mock, err := registry.Get(domain.ProviderMock)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderMock, mock.Name())

	_, err = registry.Get(domain.ProviderRazorpay)
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}
