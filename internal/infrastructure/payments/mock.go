package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/google/uuid"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/rs/zerolog"
)

// MockSignatureHeader carries the mock webhook HMAC.
const MockSignatureHeader = "X-Mock-Signature"

// Mock is a provider for local development: every payment verifies and
// webhooks are plain JSON signed with a shared secret.
type Mock struct {
	secret string
	logger zerolog.Logger
}

var _ ports.PaymentProvider = (*Mock)(nil)

func NewMock(secret string, logger zerolog.Logger) *Mock {
	return &Mock{secret: secret, logger: logger}
}

func (m *Mock) Name() string { return domain.ProviderMock }

func (m *Mock) CreateOrder(_ context.Context, order *domain.Order) (*domain.ProviderCheckout, error) {
	return &domain.ProviderCheckout{
		Provider:        domain.ProviderMock,
		ProviderOrderID: "mock_order_" + uuid.NewString(),
		AmountMinor:     order.AmountMinor(),
		Currency:        domain.Currency,
		OrderNumber:     order.Number,
	}, nil
}

func (m *Mock) VerifyPayment(_ context.Context, req domain.VerifyRequest) (*domain.Verification, error) {
	txn := req.PaymentID
	if txn == "" {
		txn = "mock_pay_" + uuid.NewString()
	}
	m.logger.Debug().Str("providerOrderId", req.ProviderOrderID).Msg("Mock payment verified")
	return &domain.Verification{Verified: true, TransactionID: txn, ProviderOrderID: req.ProviderOrderID}, nil
}

type mockWebhook struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ProviderOrderID string `json:"provider_order_id"`
	PaymentID       string `json:"payment_id"`
	Amount          *int64 `json:"amount"`
	Reason          string `json:"reason"`
}

// ParseWebhook accepts {"id","type":"paid|failed|refunded",...} bodies.
func (m *Mock) ParseWebhook(_ context.Context, payload []byte, headers http.Header) (*domain.PaymentEvent, error) {
	if m.secret != "" && !utils.VerifyWebhookSignature(string(payload), headers.Get(MockSignatureHeader), m.secret) {
		return nil, fmt.Errorf("%w: mock signature mismatch", domain.ErrSignatureInvalid)
	}
	var hook mockWebhook
	if err := json.Unmarshal(payload, &hook); err != nil || hook.ID == "" {
		return nil, domain.NewValidationError("payload", "Malformed webhook payload.")
	}
	event := &domain.PaymentEvent{
		ID:              hook.ID,
		Provider:        domain.ProviderMock,
		Type:            hook.Type,
		Outcome:         domain.OutcomeIgnored,
		ProviderOrderID: hook.ProviderOrderID,
		PaymentID:       hook.PaymentID,
		FailureReason:   hook.Reason,
		Payload:         payload,
		ReceivedAt:      time.Now().UTC(),
	}
	switch domain.PaymentOutcome(hook.Type) {
	case domain.OutcomePaid:
		event.Outcome = domain.OutcomePaid
		event.AmountMinor = hook.Amount
	case domain.OutcomeFailed:
		event.Outcome = domain.OutcomeFailed
	case domain.OutcomeRefunded:
		event.Outcome = domain.OutcomeRefunded
	}
	return event, nil
}
