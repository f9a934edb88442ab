package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/infrastructure/repository/memory"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyMailer struct {
	failures int
	calls    int
	sent     []ports.Email
}

func (m *flakyMailer) Send(_ context.Context, email ports.Email) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("smtp: 421 service not available")
	}
	m.sent = append(m.sent, email)
	return nil
}

func newNotificationFixture(t *testing.T, mailer ports.Mailer) (*NotificationService, *domain.Order, *[]time.Duration) {
	t.Helper()
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	customers := memory.NewCustomerRepository()
	require.NoError(t, customers.SaveCustomer(ctx, &domain.Customer{ID: "cust-1", Email: "anu@example.com", Name: "Anu"}))
	require.NoError(t, customers.SaveCustomer(ctx, &domain.Customer{ID: "cust-2", Name: "No Email"}))

	order := &domain.Order{
		ID: "o-1", Number: "ORD123456", CustomerID: "cust-1",
		Items:          []domain.OrderItem{{Kind: domain.LineFish, ProductID: "p-guppy", Name: "Fancy Guppy", Quantity: 2, UnitPrice: decimal.NewFromInt(150)}},
		TotalAmount:    decimal.NewFromInt(300),
		DeliveryCharge: decimal.NewFromInt(60),
		TotalWeightKg:  decimal.NewFromInt(1),
		FinalAmount:    decimal.NewFromInt(360),
		Status:         domain.OrderPending,
		PaymentMethod:  domain.MethodUPI,
		PaymentStatus:  domain.PaymentPaid,
		TransactionID:  "UPI42",
		ShippingState:  "Kerala",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, orders.CreateOrder(ctx, order))

	svc := NewNotificationService(orders, customers, mailer, zerolog.Nop(), NotificationOptions{SiteURL: "https://fishyfriend.example"})
	var waits []time.Duration
	svc.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return svc, order, &waits
}

func TestInvoiceEmailRetriesWithBackoff(t *testing.T) {
	mailer := &flakyMailer{failures: 2}
	svc, order, waits := newNotificationFixture(t, mailer)

	err := svc.HandleOrderEvent(context.Background(), &domain.OrderEvent{Type: domain.EventOrderPaid, OrderID: order.ID})
	require.NoError(t, err)

	assert.Equal(t, 3, mailer.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
	require.Len(t, mailer.sent, 1)
	email := mailer.sent[0]
	assert.Equal(t, "anu@example.com", email.To)
	assert.Equal(t, "Fishy Friend Aquatics invoice for order ORD123456", email.Subject)
	assert.Contains(t, email.Body, "Hi Anu,")
	assert.Contains(t, email.Body, "Fancy Guppy")
	assert.Contains(t, email.Body, "Total paid: ₹360.00")
	assert.Contains(t, email.Body, "(ref UPI42)")
	assert.Contains(t, email.Body, "https://fishyfriend.example")
}

func TestEmailGivesUpAfterMaxAttempts(t *testing.T) {
	mailer := &flakyMailer{failures: 100}
	svc, order, waits := newNotificationFixture(t, mailer)

	err := svc.HandleOrderEvent(context.Background(), &domain.OrderEvent{Type: domain.EventOrderCancelled, OrderID: order.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 5 attempts")
	assert.Equal(t, MaxEmailAttempts, mailer.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, *waits)
}

func TestCancellationEmailMentionsRefund(t *testing.T) {
	mailer := &flakyMailer{}
	svc, order, _ := newNotificationFixture(t, mailer)

	require.NoError(t, svc.HandleOrderEvent(context.Background(), &domain.OrderEvent{Type: domain.EventOrderCancelled, OrderID: order.ID}))
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].Subject, "cancelled")
	assert.Contains(t, mailer.sent[0].Body, "refunded")
}

func TestEventsWithoutEmailAreAcknowledged(t *testing.T) {
	mailer := &flakyMailer{}
	svc, order, _ := newNotificationFixture(t, mailer)
	ctx := context.Background()

	require.NoError(t, svc.HandleOrderEvent(ctx, &domain.OrderEvent{Type: domain.EventOrderCreated, OrderID: order.ID}))
	require.NoError(t, svc.HandleOrderEvent(ctx, &domain.OrderEvent{Type: domain.EventOrderPaid, OrderID: "missing"}))

	order.ID = "o-2"
	order.Number = "ORD654321"
	order.CustomerID = "cust-2"
	require.NoError(t, svc.orders.CreateOrder(ctx, order))
	require.NoError(t, svc.HandleOrderEvent(ctx, &domain.OrderEvent{Type: domain.EventOrderPaid, OrderID: "o-2"}))

	assert.Zero(t, mailer.calls)
}

func TestSleepContextHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
