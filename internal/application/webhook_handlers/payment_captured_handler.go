package webhook_handlers

import (
	"context"
	"errors"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"

	"github.com/rs/zerolog"
)

// PaymentCapturedHandler marks orders paid when the provider confirms
// capture (Razorpay payment.captured / order.paid, Stripe
// payment_intent.succeeded).
type PaymentCapturedHandler struct {
	logger   zerolog.Logger
	payments *application.PaymentService
}

// NewPaymentCapturedHandler creates a new payment captured handler
func NewPaymentCapturedHandler(logger zerolog.Logger, payments *application.PaymentService) *PaymentCapturedHandler {
	return &PaymentCapturedHandler{logger: logger, payments: payments}
}

// CanHandle returns true for events that settle an order.
func (h *PaymentCapturedHandler) CanHandle(event *domain.PaymentEvent) bool {
	return event.Outcome == domain.OutcomePaid
}

// Handle marks the order paid. Repeated captures leave it unchanged. Money
// captured for a cancelled or refunded order is left for staff to resolve.
func (h *PaymentCapturedHandler) Handle(ctx context.Context, event *domain.PaymentEvent, order *domain.Order) error {
	h.logger.Info().
		Str("provider", event.Provider).
		Str("type", event.Type).
		Str("orderNumber", order.Number).
		Str("paymentId", event.PaymentID).
		Msg("Processing payment captured event")

	already, err := h.payments.ApplyPaid(ctx, order, event.PaymentID)
	if errors.Is(err, domain.ErrOrderCancelled) || errors.Is(err, domain.ErrInvalidTransition) {
		h.logger.Error().
			Err(err).
			Str("orderNumber", order.Number).
			Str("paymentId", event.PaymentID).
			Msg("Payment captured for an order that cannot be paid, needs manual refund")
		return nil
	}
	if err != nil {
		return err
	}
	if already {
		h.logger.Info().Str("orderNumber", order.Number).Msg("Order was already paid")
	}
	return nil
}
