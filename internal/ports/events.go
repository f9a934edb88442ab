package ports

import (
	"context"

	"fishy-friend-storefront/internal/domain"
)

// EventPublisher publishes order lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OrderEvent) error
}

// Email is a plain-text message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// Metrics records business counters.
type Metrics interface {
	OrderPlaced(method domain.PaymentMethod, amount float64)
	PaymentOutcome(provider string, outcome domain.PaymentOutcome)
	WebhookReceived(provider string, status domain.EventStatus)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) OrderPlaced(domain.PaymentMethod, float64)    {}
func (NopMetrics) PaymentOutcome(string, domain.PaymentOutcome) {}
func (NopMetrics) WebhookReceived(string, domain.EventStatus)   {}
