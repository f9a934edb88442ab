package pubsub

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// OrderEventChannel represents a subscription channel
type OrderEventChannel struct {
	ID     string
	Filter *OrderEventFilter
	Events chan *domain.OrderEvent
	Done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// OrderEventFilter filters order events
type OrderEventFilter struct {
	Types      []domain.OrderEventType
	CustomerID string
}

// DefaultSendTimeout is how long Publish waits on a subscriber whose buffer
// is full before giving up on that subscriber.
const DefaultSendTimeout = 5 * time.Second

// OrderPubSub fans order events out to in-process subscribers.
type OrderPubSub struct {
	mu          sync.RWMutex
	channels    map[string]*OrderEventChannel
	logger      zerolog.Logger
	nextID      int64
	idMu        sync.Mutex
	wg          sync.WaitGroup
	sendTimeout time.Duration
}

var _ ports.EventPublisher = (*OrderPubSub)(nil)

// NewOrderPubSub creates a new order event pub/sub system
func NewOrderPubSub(logger zerolog.Logger) *OrderPubSub {
	return &OrderPubSub{
		channels:    make(map[string]*OrderEventChannel),
		logger:      logger,
		sendTimeout: DefaultSendTimeout,
	}
}

// SetSendTimeout changes how long Publish waits on a slow subscriber.
func (ps *OrderPubSub) SetSendTimeout(d time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.sendTimeout = d
}

// Subscribe creates a new subscription channel. The channel closes when ctx
// is cancelled.
func (ps *OrderPubSub) Subscribe(ctx context.Context, filter *OrderEventFilter) *OrderEventChannel {
	ps.idMu.Lock()
	ps.nextID++
	id := fmt.Sprintf("channel-%d", ps.nextID)
	ps.idMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)

	channel := &OrderEventChannel{
		ID:     id,
		Filter: filter,
		Events: make(chan *domain.OrderEvent, 64),
		Done:   make(chan struct{}),
		ctx:    subCtx,
		cancel: cancel,
	}

	ps.mu.Lock()
	ps.channels[id] = channel
	ps.mu.Unlock()

	ps.logger.Info().
		Str("channelId", id).
		Interface("filter", filter).
		Msg("Order event subscription created")

	ps.wg.Add(1)
	go func() {
		defer ps.wg.Done()
		<-subCtx.Done()
		ps.Unsubscribe(id)
	}()

	return channel
}

// Unsubscribe removes a subscription channel
func (ps *OrderPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Events)
	close(channel.Done)
	channel.cancel()
	delete(ps.channels, channelID)

	ps.logger.Info().
		Str("channelId", channelID).
		Msg("Order event subscription removed")
}

// Publish broadcasts an event to all matching subscribers. A subscriber
// with a full buffer is waited on for up to the send timeout.
func (ps *OrderPubSub) Publish(ctx context.Context, event *domain.OrderEvent) error {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	published := 0
	for _, channel := range ps.channels {
		if !matchesFilter(event, channel.Filter) {
			continue
		}
		select {
		case channel.Events <- event:
			published++
			continue
		case <-channel.ctx.Done():
			continue
		default:
		}
		if ps.waitToSend(ctx, channel, event) {
			published++
		}
	}

	if published > 0 {
		ps.logger.Debug().
			Str("event", string(event.Type)).
			Str("orderNumber", event.OrderNumber).
			Int("subscribers", published).
			Msg("Published order event to subscribers")
	}
	return nil
}

func (ps *OrderPubSub) waitToSend(ctx context.Context, channel *OrderEventChannel, event *domain.OrderEvent) bool {
	timer := time.NewTimer(ps.sendTimeout)
	defer timer.Stop()
	select {
	case channel.Events <- event:
		return true
	case <-channel.ctx.Done():
		return false
	case <-ctx.Done():
	case <-timer.C:
	}
	ps.logger.Error().
		Str("channelId", channel.ID).
		Str("event", string(event.Type)).
		Str("orderNumber", event.OrderNumber).
		Dur("waited", ps.sendTimeout).
		Msg("Subscriber too slow, dropping event")
	return false
}

// Close cancels every subscription and waits for them to be torn down.
func (ps *OrderPubSub) Close() {
	ps.mu.RLock()
	cancels := make([]context.CancelFunc, 0, len(ps.channels))
	for _, c := range ps.channels {
		cancels = append(cancels, c.cancel)
	}
	ps.mu.RUnlock()
	for _, cancel := range cancels {
		cancel()
	}
	ps.wg.Wait()
}

func matchesFilter(event *domain.OrderEvent, filter *OrderEventFilter) bool {
	if filter == nil {
		return true
	}
	if len(filter.Types) > 0 && !slices.Contains(filter.Types, event.Type) {
		return false
	}
	if filter.CustomerID != "" && event.CustomerID != filter.CustomerID {
		return false
	}
	return true
}

// Stats returns pub/sub statistics
func (ps *OrderPubSub) Stats() map[string]interface{} {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return map[string]interface{}{
		"active_subscriptions": len(ps.channels),
	}
}

// EventHandler consumes one order event.
type EventHandler func(ctx context.Context, event *domain.OrderEvent) error

// Consume runs handler for every event on channel until it closes. Handler
// errors are logged and the loop continues.
func Consume(ctx context.Context, channel *OrderEventChannel, handler EventHandler, logger zerolog.Logger) {
	for event := range channel.Events {
		if err := handler(ctx, event); err != nil {
			logger.Error().
				Err(err).
				Str("event", string(event.Type)).
				Str("orderNumber", event.OrderNumber).
				Msg("Failed to handle order event")
		}
	}
}
