package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// DefaultIdempotencyTTL is how long a webhook event id stays claimed.
const DefaultIdempotencyTTL = 72 * time.Hour

// PaymentOptions configures the payment service.
type PaymentOptions struct {
	UPIID          string
	PayeeName      string
	IdempotencyTTL time.Duration
}

// PaymentService starts, verifies and settles payments.
type PaymentService struct {
	orders      ports.OrderRepository
	eventLog    ports.PaymentEventRepository
	idempotency ports.IdempotencyStore
	registry    *PaymentRegistry
	dispatcher  *WebhookDispatcher
	events      orderEvents
	metrics     ports.Metrics
	logger      zerolog.Logger
	opts        PaymentOptions
	now         clock
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	orders ports.OrderRepository,
	eventLog ports.PaymentEventRepository,
	idempotency ports.IdempotencyStore,
	registry *PaymentRegistry,
	dispatcher *WebhookDispatcher,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	logger zerolog.Logger,
	opts PaymentOptions,
) *PaymentService {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = DefaultIdempotencyTTL
	}
	return &PaymentService{
		orders:      orders,
		eventLog:    eventLog,
		idempotency: idempotency,
		registry:    registry,
		dispatcher:  dispatcher,
		events:      orderEvents{publisher: publisher, logger: logger, now: time.Now},
		metrics:     metrics,
		logger:      logger,
		opts:        opts,
		now:         time.Now,
	}
}

func (s *PaymentService) customerOrder(ctx context.Context, customer *domain.Customer, orderID string) (*domain.Order, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.CustomerID != customer.ID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// StartPayment registers the order with a provider and returns what the
// client needs to open the provider's checkout.
func (s *PaymentService) StartPayment(ctx context.Context, customer *domain.Customer, orderID, providerName string) (*domain.ProviderCheckout, error) {
	order, err := s.customerOrder(ctx, customer, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.AwaitingPayment(); err != nil {
		return nil, err
	}
	provider, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	checkout, err := provider.CreateOrder(ctx, order)
	if err != nil {
		s.logger.Error().Err(err).Str("provider", provider.Name()).Str("orderNumber", order.Number).Msg("Failed to create provider order")
		return nil, fmt.Errorf("failed to create %s order: %w", provider.Name(), err)
	}
	_, err = changeOrder(ctx, s.orders, order, func(o *domain.Order) (bool, error) {
		if err := o.AwaitingPayment(); err != nil {
			return false, err
		}
		o.PaymentProvider = provider.Name()
		o.ProviderOrderID = checkout.ProviderOrderID
		o.UpdatedAt = s.now()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("provider", provider.Name()).
		Str("orderNumber", order.Number).
		Str("providerOrderId", checkout.ProviderOrderID).
		Int64("amount", checkout.AmountMinor).
		Msg("Payment started")
	return checkout, nil
}

// VerifyResult is returned to the client after verification.
type VerifyResult struct {
	Order       *domain.Order `json:"order"`
	AlreadyPaid bool          `json:"already_paid"`
}

// VerifyPayment confirms a client-reported payment with the provider and
// marks the order paid. Verifying a paid order again is a no-op.
func (s *PaymentService) VerifyPayment(ctx context.Context, customer *domain.Customer, providerName string, req domain.VerifyRequest) (*VerifyResult, error) {
	provider, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}
	order, err := s.customerOrder(ctx, customer, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return &VerifyResult{Order: order, AlreadyPaid: true}, nil
	}
	if err := order.AwaitingPayment(); err != nil {
		return nil, err
	}
	if order.PaymentProvider != provider.Name() || order.ProviderOrderID == "" {
		return nil, domain.NewValidationError("provider", "Payment was not started with %s.", provider.Name())
	}
	if req.ProviderOrderID == "" {
		req.ProviderOrderID = order.ProviderOrderID
	}
	if req.ProviderOrderID != order.ProviderOrderID {
		s.logger.Warn().
			Str("orderNumber", order.Number).
			Str("expected", order.ProviderOrderID).
			Str("got", req.ProviderOrderID).
			Msg("Payment verification for a different provider order")
		return nil, fmt.Errorf("%w: provider order mismatch", domain.ErrSignatureInvalid)
	}

	verification, err := provider.VerifyPayment(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrSignatureInvalid) {
			s.logger.Warn().Str("orderNumber", order.Number).Str("provider", provider.Name()).Msg("Payment signature verification failed")
			return nil, err
		}
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if !verification.Verified {
		return nil, domain.NewValidationError("payment", "Payment not completed: %s.", verification.Reason)
	}

	already, err := s.ApplyPaid(ctx, order, verification.TransactionID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Order: order, AlreadyPaid: already}, nil
}

// UPIInstructions returns the UPI payment string and app links for an order.
func (s *PaymentService) UPIInstructions(ctx context.Context, customer *domain.Customer, orderID string) (*domain.UPIInstructions, error) {
	order, err := s.customerOrder(ctx, customer, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.AwaitingPayment(); err != nil {
		return nil, err
	}
	if s.opts.UPIID == "" {
		return nil, domain.NewValidationError("payment_method", "UPI payments are not available right now.")
	}
	ins := domain.BuildUPIInstructions(order, s.opts.UPIID, s.opts.PayeeName)
	return &ins, nil
}

// ConfirmUPI marks a pending UPI order paid with the reference the customer submitted.
func (s *PaymentService) ConfirmUPI(ctx context.Context, customer *domain.Customer, orderID, reference string) (*VerifyResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domain.NewValidationError("upi_transaction_id", "Please enter the UPI transaction ID.")
	}
	order, err := s.customerOrder(ctx, customer, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != domain.MethodUPI {
		return nil, domain.NewValidationError("payment_method", "This order is not a UPI order.")
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return &VerifyResult{Order: order, AlreadyPaid: true}, nil
	}
	if err := order.AwaitingPayment(); err != nil {
		return nil, err
	}
	already, err := s.applyPaid(ctx, order, domain.ProviderUPI, reference)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Order: order, AlreadyPaid: already}, nil
}

// WebhookResult tells the caller what happened to a webhook delivery.
type WebhookResult struct {
	EventID   string             `json:"event_id"`
	Status    domain.EventStatus `json:"status"`
	Duplicate bool               `json:"duplicate,omitempty"`
	OrderID   string             `json:"order_id,omitempty"`
}

// HandleWebhook verifies, de-duplicates and applies a provider webhook.
// Signature failures return domain.ErrSignatureInvalid and record nothing.
// Unknown provider orders return domain.ErrNotFound so the provider retries.
func (s *PaymentService) HandleWebhook(ctx context.Context, providerName string, payload []byte, headers http.Header) (*WebhookResult, error) {
	provider, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}
	event, err := provider.ParseWebhook(ctx, payload, headers)
	if err != nil {
		if errors.Is(err, domain.ErrSignatureInvalid) {
			s.logger.Warn().Err(err).Str("provider", provider.Name()).Msg("Webhook signature verification failed")
			s.metrics.WebhookReceived(provider.Name(), domain.EventRejected)
		}
		return nil, err
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = s.now()
	}
	result := &WebhookResult{EventID: event.ID}

	key := "payment-webhook:" + provider.Name() + ":" + event.ID
	fresh, err := s.claim(ctx, key, provider.Name(), event.ID)
	if err != nil {
		return nil, err
	}
	if !fresh {
		s.logger.Info().Str("provider", provider.Name()).Str("eventId", event.ID).Msg("Duplicate webhook delivery acknowledged")
		result.Duplicate = true
		result.Status = domain.EventProcessed
		return result, nil
	}

	record := &domain.PaymentEventRecord{
		EventID:    event.ID,
		Provider:   provider.Name(),
		Type:       event.Type,
		ReceivedAt: event.ReceivedAt,
	}

	if event.Outcome == domain.OutcomeIgnored {
		s.logger.Info().Str("provider", provider.Name()).Str("type", event.Type).Msg("Ignoring payment event")
		return s.finish(ctx, result, record, domain.EventIgnored, "event type not handled")
	}

	order, err := s.orders.GetOrderByProviderOrderID(ctx, provider.Name(), event.ProviderOrderID)
	if err != nil {
		s.release(ctx, key)
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	if order == nil {
		s.release(ctx, key)
		s.logger.Warn().
			Str("provider", provider.Name()).
			Str("providerOrderId", event.ProviderOrderID).
			Str("eventId", event.ID).
			Msg("Webhook for unknown provider order")
		return nil, domain.ErrNotFound
	}
	record.OrderID = order.ID
	result.OrderID = order.ID

	if event.AmountMinor != nil && *event.AmountMinor != order.AmountMinor() {
		s.logger.Error().
			Str("orderNumber", order.Number).
			Int64("expected", order.AmountMinor()).
			Int64("received", *event.AmountMinor).
			Str("eventId", event.ID).
			Msg("Webhook amount does not match order, rejecting")
		return s.finish(ctx, result, record, domain.EventRejected,
			fmt.Sprintf("amount mismatch: expected %d got %d", order.AmountMinor(), *event.AmountMinor))
	}

	if err := s.dispatcher.Dispatch(ctx, event, order); err != nil {
		if errors.Is(err, ErrNoHandler) {
			return s.finish(ctx, result, record, domain.EventIgnored, "no handler")
		}
		s.release(ctx, key)
		record.Status = domain.EventFailed
		record.Detail = err.Error()
		if logErr := s.eventLog.RecordEvent(ctx, record); logErr != nil {
			s.logger.Error().Err(logErr).Msg("Failed to record payment event")
		}
		s.metrics.WebhookReceived(provider.Name(), domain.EventFailed)
		return nil, fmt.Errorf("failed to process payment event: %w", err)
	}
	return s.finish(ctx, result, record, domain.EventProcessed, "")
}

// claim consults the fast idempotency store and falls back to the
// persisted event log when the store is unavailable or forgot the key.
func (s *PaymentService) claim(ctx context.Context, key, provider, eventID string) (bool, error) {
	fresh, err := s.idempotency.Claim(ctx, key, s.opts.IdempotencyTTL)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Idempotency store unavailable, using event log")
		fresh = true
	}
	if !fresh {
		return false, nil
	}
	rec, err := s.eventLog.GetEvent(ctx, provider, eventID)
	if err != nil {
		s.release(ctx, key)
		return false, fmt.Errorf("failed to read payment event log: %w", err)
	}
	if rec != nil && rec.Status != domain.EventFailed {
		return false, nil
	}
	return true, nil
}

func (s *PaymentService) release(ctx context.Context, key string) {
	if err := s.idempotency.Release(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to release idempotency key")
	}
}

func (s *PaymentService) finish(ctx context.Context, result *WebhookResult, record *domain.PaymentEventRecord, status domain.EventStatus, detail string) (*WebhookResult, error) {
	record.Status = status
	record.Detail = detail
	if err := s.eventLog.RecordEvent(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("eventId", record.EventID).Msg("Failed to record payment event")
	}
	s.metrics.WebhookReceived(record.Provider, status)
	result.Status = status
	return result, nil
}

// ApplyPaid marks order paid, persists it and announces it once, however
// many requests race to report the same payment.
func (s *PaymentService) ApplyPaid(ctx context.Context, order *domain.Order, transactionID string) (bool, error) {
	return s.applyPaid(ctx, order, "", transactionID)
}

func (s *PaymentService) applyPaid(ctx context.Context, order *domain.Order, provider, transactionID string) (bool, error) {
	already := false
	stored, err := changeOrder(ctx, s.orders, order, func(o *domain.Order) (bool, error) {
		var err error
		if already, err = o.MarkPaid(transactionID, s.now()); err != nil || already {
			return false, err
		}
		if provider != "" {
			o.PaymentProvider = provider
		}
		return true, nil
	})
	if err != nil || !stored {
		return already, err
	}
	s.logger.Info().
		Str("orderNumber", order.Number).
		Str("provider", order.PaymentProvider).
		Str("transactionId", order.TransactionID).
		Msg("Order paid")
	s.metrics.PaymentOutcome(order.PaymentProvider, domain.OutcomePaid)
	s.events.publish(ctx, domain.EventOrderPaid, order)
	return false, nil
}

// ApplyFailed records a failed attempt unless the order is already settled.
func (s *PaymentService) ApplyFailed(ctx context.Context, order *domain.Order, reason string) (bool, error) {
	stored, err := changeOrder(ctx, s.orders, order, func(o *domain.Order) (bool, error) {
		return o.MarkFailed(reason, s.now()), nil
	})
	if err != nil {
		return false, err
	}
	if !stored {
		s.logger.Info().
			Str("orderNumber", order.Number).
			Str("paymentStatus", string(order.PaymentStatus)).
			Msg("Ignoring payment failure for settled order")
		return false, nil
	}
	s.logger.Warn().Str("orderNumber", order.Number).Str("reason", reason).Msg("Payment failed")
	s.metrics.PaymentOutcome(order.PaymentProvider, domain.OutcomeFailed)
	s.events.publish(ctx, domain.EventOrderPaymentFailed, order)
	return true, nil
}

// ApplyRefund marks a paid order refunded.
func (s *PaymentService) ApplyRefund(ctx context.Context, order *domain.Order) (bool, error) {
	already := false
	stored, err := changeOrder(ctx, s.orders, order, func(o *domain.Order) (bool, error) {
		var err error
		if already, err = o.MarkRefunded(s.now()); err != nil || already {
			return false, err
		}
		return true, nil
	})
	if err != nil || !stored {
		return already, err
	}
	s.logger.Info().Str("orderNumber", order.Number).Msg("Order refunded")
	s.metrics.PaymentOutcome(order.PaymentProvider, domain.OutcomeRefunded)
	s.events.publish(ctx, domain.EventOrderRefunded, order)
	return false, nil
}

// RefundOrder is the staff action for a refund made outside the provider webhooks.
func (s *PaymentService) RefundOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := s.ApplyRefund(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// PaymentEvents lists the provider webhook events recorded for an order.
func (s *PaymentService) PaymentEvents(ctx context.Context, orderID string) ([]*domain.PaymentEventRecord, error) {
	records, err := s.eventLog.ListEventsForOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment events: %w", err)
	}
	return records, nil
}
