package domain

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingOrder() *Order {
	return &Order{
		ID:            "o1",
		Number:        "ORD123456",
		Status:        OrderPending,
		PaymentStatus: PaymentPending,
		FinalAmount:   dec("560.00"),
	}
}

func TestComputeFinalAmount(t *testing.T) {
	assert.True(t, ComputeFinalAmount(dec("500"), dec("50"), dec("60")).Equal(dec("510")))
	assert.True(t, ComputeFinalAmount(dec("100"), dec("200"), decimal.Zero).IsZero())
}

func TestGenerateOrderNumber(t *testing.T) {
	re := regexp.MustCompile(`^ORD\d{6}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, GenerateOrderNumber())
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	o := pendingOrder()
	at := time.Now()
	already, err := o.MarkPaid("pay_1", at)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
	assert.Equal(t, "pay_1", o.TransactionID)
	require.NotNil(t, o.PaidAt)

	already, err = o.MarkPaid("pay_2", at.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, "pay_1", o.TransactionID, "second payment must not overwrite")
}

func TestMarkPaidGuards(t *testing.T) {
	o := pendingOrder()
	o.Status = OrderCancelled
	_, err := o.MarkPaid("pay", time.Now())
	assert.True(t, errors.Is(err, ErrOrderCancelled))

	o = pendingOrder()
	o.PaymentStatus = PaymentRefunded
	_, err = o.MarkPaid("pay", time.Now())
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	o = pendingOrder()
	assert.True(t, o.MarkFailed("declined", time.Now()))
	_, err = o.MarkPaid("pay", time.Now())
	require.NoError(t, err, "a failed attempt can be retried")
	assert.Empty(t, o.FailureReason)
}

func TestLateFailureNeverDowngrades(t *testing.T) {
	o := pendingOrder()
	_, err := o.MarkPaid("pay", time.Now())
	require.NoError(t, err)
	assert.False(t, o.MarkFailed("late", time.Now()))
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
}

func TestMarkRefunded(t *testing.T) {
	o := pendingOrder()
	_, err := o.MarkRefunded(time.Now())
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = o.MarkPaid("pay", time.Now())
	require.NoError(t, err)
	already, err := o.MarkRefunded(time.Now())
	require.NoError(t, err)
	assert.False(t, already)
	already, err = o.MarkRefunded(time.Now())
	require.NoError(t, err)
	assert.True(t, already)
	assert.False(t, o.InvoiceAvailable())
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderPending, false},
		{OrderCancelled, OrderProcessing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := &Order{Status: tt.from}
			err := o.TransitionTo(tt.to, time.Now())
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, o.Status)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				assert.Equal(t, tt.from, o.Status)
			}
		})
	}
}

func TestCustomerCancellable(t *testing.T) {
	assert.True(t, (&Order{Status: OrderPending}).CustomerCancellable())
	assert.True(t, (&Order{Status: OrderProcessing}).CustomerCancellable())
	assert.False(t, (&Order{Status: OrderShipped}).CustomerCancellable())
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod(" UPI ")
	require.NoError(t, err)
	assert.Equal(t, MethodUPI, m)
	_, err = ParsePaymentMethod("cod")
	assert.Error(t, err)
}

func TestBuildUPIInstructions(t *testing.T) {
	o := pendingOrder()
	ins := BuildUPIInstructions(o, "shop@oksbi", "Fishy Friend")
	assert.Equal(t, "560.00", ins.Amount)
	assert.True(t, strings.HasPrefix(ins.URI, "upi://pay?pa=shop%40oksbi&pn=Fishy+Friend&am=560.00"))
	assert.True(t, strings.HasSuffix(ins.URI, "&cu=INR"))
	assert.Contains(t, ins.AppLinks["googlepay"], "gpay://upi/pay?")
	assert.Len(t, ins.AppLinks, 3)
}
