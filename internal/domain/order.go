package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// PaymentStatus tracks money movement for an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod is what the customer chose at checkout.
type PaymentMethod string

const (
	MethodCard       PaymentMethod = "card"
	MethodUPI        PaymentMethod = "upi"
	MethodNetBanking PaymentMethod = "netbanking"
	MethodWallet     PaymentMethod = "wallet"
)

// ParsePaymentMethod validates a payment method name.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case MethodCard, MethodUPI, MethodNetBanking, MethodWallet:
		return m, nil
	}
	return "", NewValidationError("payment_method", "Unknown payment method %q.", raw)
}

var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// OrderItem is a snapshot of a cart line at checkout time.
type OrderItem struct {
	Kind      LineKind        `json:"kind"`
	ProductID string          `json:"product_id,omitempty"`
	ComboID   string          `json:"combo_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Total is the line total.
func (i OrderItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order placed by a customer.
type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"order_number"`
	CustomerID      string          `json:"customer_id"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DeliveryCharge  decimal.Decimal `json:"delivery_charge"`
	TotalWeightKg   decimal.Decimal `json:"total_weight_kg"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	PaymentProvider string          `json:"payment_provider,omitempty"`
	ProviderOrderID string          `json:"provider_order_id,omitempty"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	FailureReason   string          `json:"failure_reason,omitempty"`
	ShippingAddress string          `json:"shipping_address"`
	ShippingState   string          `json:"shipping_state"`
	ShippingPincode string          `json:"shipping_pincode,omitempty"`
	PhoneNumber     string          `json:"phone_number"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// GenerateOrderNumber returns "ORD" followed by six random digits. Callers
// retry on collision.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD%d", 100000+rand.IntN(900000))
}

// ComputeFinalAmount returns subtotal - discount + delivery, never negative.
func ComputeFinalAmount(subtotal, discount, delivery decimal.Decimal) decimal.Decimal {
	final := subtotal.Sub(discount).Add(delivery)
	if final.IsNegative() {
		return decimal.Zero
	}
	return RoundMoney(final)
}

// AmountMinor is the final amount in paise.
func (o *Order) AmountMinor() int64 {
	return ToMinorUnits(o.FinalAmount)
}

// OrderState is the pair of statuses every order write is conditioned on.
type OrderState struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
}

// State returns the order's current statuses.
func (o *Order) State() OrderState {
	return OrderState{Status: o.Status, PaymentStatus: o.PaymentStatus}
}

// CanTransitionTo reports whether staff may move the order to next.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[o.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the order to next when allowed.
func (o *Order) TransitionTo(next OrderStatus, at time.Time) error {
	if !o.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = at
	return nil
}

// CustomerCancellable reports whether the customer may still cancel.
func (o *Order) CustomerCancellable() bool {
	return o.Status == OrderPending || o.Status == OrderProcessing
}

// AwaitingPayment reports whether the order can still be paid.
func (o *Order) AwaitingPayment() error {
	if o.Status == OrderCancelled {
		return ErrOrderCancelled
	}
	switch o.PaymentStatus {
	case PaymentPaid:
		return ErrAlreadyPaid
	case PaymentRefunded:
		return fmt.Errorf("%w: payment refunded", ErrInvalidTransition)
	}
	return nil
}

// MarkPaid records a successful payment. Paying an already paid order is a
// no-op and reports alreadyPaid.
func (o *Order) MarkPaid(transactionID string, at time.Time) (alreadyPaid bool, err error) {
	switch o.PaymentStatus {
	case PaymentPaid:
		return true, nil
	case PaymentRefunded:
		return false, fmt.Errorf("%w: refunded order cannot be paid", ErrInvalidTransition)
	}
	if o.Status == OrderCancelled {
		return false, ErrOrderCancelled
	}
	o.PaymentStatus = PaymentPaid
	if transactionID != "" {
		o.TransactionID = transactionID
	}
	o.FailureReason = ""
	o.PaidAt = &at
	o.UpdatedAt = at
	return false, nil
}

// MarkFailed records a failed attempt. A late failure never downgrades a
// paid or refunded order; changed reports whether anything was updated.
func (o *Order) MarkFailed(reason string, at time.Time) (changed bool) {
	if o.PaymentStatus != PaymentPending {
		return false
	}
	o.PaymentStatus = PaymentFailed
	o.FailureReason = reason
	o.UpdatedAt = at
	return true
}

// MarkRefunded records a refund of a paid order.
func (o *Order) MarkRefunded(at time.Time) (alreadyRefunded bool, err error) {
	switch o.PaymentStatus {
	case PaymentRefunded:
		return true, nil
	case PaymentPaid:
		o.PaymentStatus = PaymentRefunded
		o.UpdatedAt = at
		return false, nil
	}
	return false, fmt.Errorf("%w: only paid orders can be refunded", ErrInvalidTransition)
}

// InvoiceAvailable reports whether an invoice can be issued.
func (o *Order) InvoiceAvailable() bool {
	return o.PaymentStatus == PaymentPaid
}

// OrderFilter narrows staff order listings.
type OrderFilter struct {
	CustomerID    string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Search        string
	Limit         int
}

// OrderStats feeds the staff dashboard.
type OrderStats struct {
	ByStatus      map[OrderStatus]int `json:"by_status"`
	TotalOrders   int                 `json:"total_orders"`
	PaidRevenue   decimal.Decimal     `json:"paid_revenue"`
	PendingOrders int                 `json:"pending_orders"`
}
