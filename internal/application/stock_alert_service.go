package application

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// StockAlertService raises staff alerts when products run low or sell out
// and lets staff work through them.
type StockAlertService struct {
	alerts    ports.StockAlertRepository
	threshold int
	logger    zerolog.Logger
	now       clock
}

// NewStockAlertService creates a new stock alert service. A threshold of
// zero or less uses domain.DefaultLowStockThreshold.
func NewStockAlertService(alerts ports.StockAlertRepository, threshold int, logger zerolog.Logger) *StockAlertService {
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}
	return &StockAlertService{alerts: alerts, threshold: threshold, logger: logger, now: time.Now}
}

// List returns alerts newest first.
func (s *StockAlertService) List(ctx context.Context, unreadOnly bool) ([]*domain.StockAlert, error) {
	alerts, err := s.alerts.ListAlerts(ctx, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock alerts: %w", err)
	}
	return alerts, nil
}

// MarkRead acknowledges one alert.
func (s *StockAlertService) MarkRead(ctx context.Context, id string) error {
	if err := s.alerts.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark stock alert read: %w", err)
	}
	return nil
}

// MarkAllRead acknowledges every unread alert and reports how many changed.
func (s *StockAlertService) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := s.alerts.MarkAllRead(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stock alerts read: %w", err)
	}
	return n, nil
}

// StockChanged records the alert for product moving from prevStock to its
// current stock. An unread alert at the same level suppresses a new one.
func (s *StockAlertService) StockChanged(ctx context.Context, product *domain.Product, prevStock int) error {
	level, raised := domain.StockAlertLevel(prevStock, product.StockQuantity, s.threshold)
	if !raised {
		return nil
	}
	pending, err := s.alerts.HasUnread(ctx, product.ID, level)
	if err != nil {
		return fmt.Errorf("failed to check stock alerts: %w", err)
	}
	if pending {
		return nil
	}
	alert := domain.NewStockAlert(newID(), product, level, s.now())
	if err := s.alerts.CreateAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to create stock alert: %w", err)
	}
	s.logger.Info().
		Str("productId", product.ID).
		Str("level", string(level)).
		Int("stock", product.StockQuantity).
		Msg("Raised stock alert")
	return nil
}

// Watch wraps catalog so every stock change made through it is checked for
// alerts. Alert failures are logged and never fail the stock change.
func (s *StockAlertService) Watch(catalog ports.CatalogRepository) ports.CatalogRepository {
	return &watchedCatalog{CatalogRepository: catalog, alerts: s}
}

type watchedCatalog struct {
	ports.CatalogRepository
	alerts *StockAlertService
}

func (w *watchedCatalog) AdjustStock(ctx context.Context, productID string, delta int) error {
	if err := w.CatalogRepository.AdjustStock(ctx, productID, delta); err != nil {
		return err
	}
	product, err := w.CatalogRepository.GetProduct(ctx, productID)
	if err != nil || product == nil {
		w.alerts.logger.Warn().Err(err).Str("productId", productID).Msg("Failed to reload product for stock alerts")
		return nil
	}
	w.check(ctx, product, product.StockQuantity-delta)
	return nil
}

func (w *watchedCatalog) UpdateProduct(ctx context.Context, product *domain.Product) error {
	prev, err := w.CatalogRepository.GetProduct(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if err := w.CatalogRepository.UpdateProduct(ctx, product); err != nil {
		return err
	}
	if prev != nil {
		w.check(ctx, product, prev.StockQuantity)
	}
	return nil
}

func (w *watchedCatalog) check(ctx context.Context, product *domain.Product, prevStock int) {
	if err := w.alerts.StockChanged(ctx, product, prevStock); err != nil {
		w.alerts.logger.Error().Err(err).Str("productId", product.ID).Msg("Failed to record stock alert")
	}
}
