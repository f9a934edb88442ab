package memory

import (
	"context"
	"sync"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// ShippingSettingsRepository is an in-memory ports.ShippingSettingsRepository.
type ShippingSettingsRepository struct {
	mu       sync.RWMutex
	settings *domain.ShippingSettings
}

// NewShippingSettingsRepository creates a store with no saved settings.
func NewShippingSettingsRepository() *ShippingSettingsRepository {
	return &ShippingSettingsRepository{}
}

var _ ports.ShippingSettingsRepository = (*ShippingSettingsRepository)(nil)

func (r *ShippingSettingsRepository) GetShippingSettings(context.Context) (*domain.ShippingSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return nil, nil
	}
	out := *r.settings
	out.UnserviceableStates = append([]string(nil), r.settings.UnserviceableStates...)
	return &out, nil
}

func (r *ShippingSettingsRepository) SaveShippingSettings(_ context.Context, settings *domain.ShippingSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *settings
	s.UnserviceableStates = append([]string(nil), settings.UnserviceableStates...)
	r.settings = &s
	return nil
}
