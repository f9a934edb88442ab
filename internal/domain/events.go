package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType names an order lifecycle event.
type OrderEventType string

const (
	EventOrderCreated       OrderEventType = "order.created"
	EventOrderPaid          OrderEventType = "order.paid"
	EventOrderPaymentFailed OrderEventType = "order.payment_failed"
	EventOrderCancelled     OrderEventType = "order.cancelled"
	EventOrderRefunded      OrderEventType = "order.refunded"
)

// OrderEvent is published whenever an order changes in a way customers care about.
type OrderEvent struct {
	ID            string          `json:"id"`
	Type          OrderEventType  `json:"type"`
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    string          `json:"customer_id"`
	FinalAmount   decimal.Decimal `json:"final_amount"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewOrderEvent snapshots order for an event of type t.
func NewOrderEvent(id string, t OrderEventType, order *Order, at time.Time) *OrderEvent {
	return &OrderEvent{
		ID:            id,
		Type:          t,
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		CustomerID:    order.CustomerID,
		FinalAmount:   order.FinalAmount,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		OccurredAt:    at,
	}
}
