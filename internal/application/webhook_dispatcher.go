package application

import (
	"context"
	"errors"
	"sync"

	"fishy-friend-storefront/internal/domain"

	"github.com/rs/zerolog"
)

// ErrNoHandler is returned when no handler accepts an event.
var ErrNoHandler = errors.New("no handler for payment event")

// WebhookHandler processes one kind of payment outcome.
type WebhookHandler interface {
	CanHandle(event *domain.PaymentEvent) bool
	Handle(ctx context.Context, event *domain.PaymentEvent, order *domain.Order) error
}

// WebhookDispatcher routes verified payment events to the first handler
// that accepts them.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates an empty dispatcher
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler. Handlers are tried in registration order.
func (d *WebhookDispatcher) RegisterHandler(h WebhookHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Dispatch hands the event to the first matching handler.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.PaymentEvent, order *domain.Order) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, h := range d.handlers {
		if h.CanHandle(event) {
			return h.Handle(ctx, event, order)
		}
	}
	d.logger.Debug().
		Str("provider", event.Provider).
		Str("type", event.Type).
		Msg("No handler registered for payment event")
	return ErrNoHandler
}
