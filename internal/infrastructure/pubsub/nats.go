package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	// SubjectPrefix namespaces every order event subject.
	SubjectPrefix = "storefront.orders."
	// AllOrderEvents matches every order event subject.
	AllOrderEvents = SubjectPrefix + ">"

	notifyQueue = "storefront-notify"
)

// Subject maps an event type to its NATS subject, e.g. order.paid to
// storefront.orders.paid.
func Subject(t domain.OrderEventType) string {
	return SubjectPrefix + strings.TrimPrefix(string(t), "order.")
}

// NATSPublisher forwards order events to NATS.
type NATSPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

// NewNATSPublisher creates a publisher on an open connection
func NewNATSPublisher(conn *nats.Conn, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, logger: logger}
}

func (p *NATSPublisher) Publish(_ context.Context, event *domain.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	msg := nats.NewMsg(Subject(event.Type))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, event.ID)
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

// Forward relays every in-process event to next until ctx is cancelled or
// the bus closes. The subscription exists when Forward returns; the returned
// channel closes once the buffered events have been relayed.
func Forward(ctx context.Context, bus *OrderPubSub, next ports.EventPublisher, logger zerolog.Logger) <-chan struct{} {
	channel := bus.Subscribe(ctx, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		Consume(ctx, channel, next.Publish, logger)
	}()
	return done
}

// NATSSubscriber delivers order events from NATS to a handler. Workers share
// a queue group so each event is handled once.
type NATSSubscriber struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewNATSSubscriber creates a subscriber on an open connection
func NewNATSSubscriber(conn *nats.Conn, logger zerolog.Logger) *NATSSubscriber {
	return &NATSSubscriber{conn: conn, logger: logger}
}

// Run handles events until ctx is cancelled, then drains the subscription.
func (s *NATSSubscriber) Run(ctx context.Context, handler EventHandler) error {
	msgs := make(chan *nats.Msg, 64)
	sub, err := s.conn.ChanQueueSubscribe(AllOrderEvents, notifyQueue, msgs)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", AllOrderEvents, err)
	}
	s.logger.Info().Str("subject", AllOrderEvents).Str("queue", notifyQueue).Msg("Listening for order events")

	for {
		select {
		case <-ctx.Done():
			if err := sub.Unsubscribe(); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to unsubscribe")
			}
			return nil
		case msg := <-msgs:
			var event domain.OrderEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				s.logger.Error().Err(err).Str("subject", msg.Subject).Msg("Discarding malformed order event")
				continue
			}
			if err := handler(ctx, &event); err != nil {
				s.logger.Error().
					Err(err).
					Str("subject", msg.Subject).
					Str("orderNumber", event.OrderNumber).
					Msg("Failed to handle order event")
			}
		}
	}
}
