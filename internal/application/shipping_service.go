package application

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ShippingService owns the delivery settings and quotes.
type ShippingService struct {
	repo   ports.ShippingSettingsRepository
	logger zerolog.Logger
	now    clock
}

// NewShippingService creates a new shipping service
func NewShippingService(repo ports.ShippingSettingsRepository, logger zerolog.Logger) *ShippingService {
	return &ShippingService{repo: repo, logger: logger, now: time.Now}
}

// Settings returns the saved settings, or the defaults when none are saved.
func (s *ShippingService) Settings(ctx context.Context) (*domain.ShippingSettings, error) {
	settings, err := s.repo.GetShippingSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipping settings: %w", err)
	}
	if settings == nil {
		return domain.DefaultShippingSettings(), nil
	}
	return settings, nil
}

// UpdateSettings validates and stores new settings.
func (s *ShippingService) UpdateSettings(ctx context.Context, settings *domain.ShippingSettings) (*domain.ShippingSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.UpdatedAt = s.now()
	if err := s.repo.SaveShippingSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save shipping settings: %w", err)
	}
	s.logger.Info().
		Str("homeState", settings.HomeState).
		Str("homeRate", settings.HomeRate.String()).
		Str("defaultRate", settings.DefaultRate.String()).
		Int("unserviceable", len(settings.UnserviceableStates)).
		Msg("Updated shipping settings")
	return settings, nil
}

// Quote prices delivery of weightKg to state.
func (s *ShippingService) Quote(ctx context.Context, state string, weightKg decimal.Decimal) (*domain.ShippingQuote, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.Quote(state, weightKg)
}
