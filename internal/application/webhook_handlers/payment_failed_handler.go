package webhook_handlers

import (
	"context"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"

	"github.com/rs/zerolog"
)

// PaymentFailedHandler records failed payment attempts.
type PaymentFailedHandler struct {
	logger   zerolog.Logger
	payments *application.PaymentService
}

// NewPaymentFailedHandler creates a new payment failed handler
func NewPaymentFailedHandler(logger zerolog.Logger, payments *application.PaymentService) *PaymentFailedHandler {
	return &PaymentFailedHandler{logger: logger, payments: payments}
}

// CanHandle returns true for failed payment events.
func (h *PaymentFailedHandler) CanHandle(event *domain.PaymentEvent) bool {
	return event.Outcome == domain.OutcomeFailed
}

// Handle marks the order failed unless it was paid or refunded meanwhile.
func (h *PaymentFailedHandler) Handle(ctx context.Context, event *domain.PaymentEvent, order *domain.Order) error {
	reason := event.FailureReason
	if reason == "" {
		reason = event.Type
	}
	_, err := h.payments.ApplyFailed(ctx, order, reason)
	return err
}
