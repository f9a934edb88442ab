package application

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Clock and IDs are swappable in tests.
type clock func() time.Time

func newID() string { return uuid.NewString() }

// orderEvents publishes order lifecycle events. Publishing is best effort:
// a broker outage never fails the request that changed the order.
type orderEvents struct {
	publisher ports.EventPublisher
	logger    zerolog.Logger
	now       clock
}

func (e orderEvents) publish(ctx context.Context, t domain.OrderEventType, order *domain.Order) {
	if e.publisher == nil {
		return
	}
	event := domain.NewOrderEvent(newID(), t, order, e.now())
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Error().
			Err(err).
			Str("event", string(t)).
			Str("orderNumber", order.Number).
			Msg("Failed to publish order event")
	}
}

func requireCustomer(customer *domain.Customer) error {
	if customer == nil || customer.ID == "" {
		return domain.ErrForbidden
	}
	if customer.Blocked {
		return domain.ErrForbidden
	}
	return nil
}

// orderWriteAttempts bounds how often a change is re-applied to a freshly
// read order after losing a write race.
const orderWriteAttempts = 3

// changeOrder applies change to order and stores the result only if the
// stored order is still in the state it was read in. When another request
// wrote first, the order is re-read into *order and change runs again on
// the fresh copy. change reports whether there is anything to store;
// changeOrder reports whether this call stored it.
func changeOrder(ctx context.Context, orders ports.OrderRepository, order *domain.Order, change func(*domain.Order) (bool, error)) (bool, error) {
	for attempt := 1; ; attempt++ {
		from := order.State()
		changed, err := change(order)
		if err != nil || !changed {
			return false, err
		}
		stored, err := orders.UpdateOrderIf(ctx, order, from)
		if err != nil {
			return false, fmt.Errorf("failed to update order: %w", err)
		}
		if stored {
			return true, nil
		}
		if attempt == orderWriteAttempts {
			return false, domain.ErrConcurrentUpdate
		}
		fresh, err := orders.GetOrder(ctx, order.ID)
		if err != nil {
			return false, fmt.Errorf("failed to reload order: %w", err)
		}
		if fresh == nil {
			return false, domain.ErrNotFound
		}
		*order = *fresh
	}
}
