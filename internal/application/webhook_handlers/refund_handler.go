package webhook_handlers

import (
	"context"
	"errors"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"

	"github.com/rs/zerolog"
)

// RefundHandler marks paid orders refunded.
type RefundHandler struct {
	logger   zerolog.Logger
	payments *application.PaymentService
}

// NewRefundHandler creates a new refund handler
func NewRefundHandler(logger zerolog.Logger, payments *application.PaymentService) *RefundHandler {
	return &RefundHandler{logger: logger, payments: payments}
}

// CanHandle returns true for refund events.
func (h *RefundHandler) CanHandle(event *domain.PaymentEvent) bool {
	return event.Outcome == domain.OutcomeRefunded
}

// Handle refunds the order. A refund for an order that was never paid is
// logged and dropped; retrying it would never succeed.
func (h *RefundHandler) Handle(ctx context.Context, event *domain.PaymentEvent, order *domain.Order) error {
	_, err := h.payments.ApplyRefund(ctx, order)
	if errors.Is(err, domain.ErrInvalidTransition) {
		h.logger.Warn().
			Str("orderNumber", order.Number).
			Str("paymentStatus", string(order.PaymentStatus)).
			Str("eventId", event.ID).
			Msg("Refund event for an order that is not paid")
		return nil
	}
	return err
}
