package entity

import (
	"time"

	"fishy-friend-storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoOrderItemDoc is a snapshot of a cart line at checkout.
type MongoOrderItemDoc struct {
	Kind      string               `bson:"kind"`
	ProductID string               `bson:"productId,omitempty"`
	ComboID   string               `bson:"comboId,omitempty"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unitPrice"`
}

// MongoOrderDoc represents an order in MongoDB
type MongoOrderDoc struct {
	ID              string               `bson:"_id"`
	Number          string               `bson:"orderNumber"`
	CustomerID      string               `bson:"customerId"`
	Items           []MongoOrderItemDoc  `bson:"items"`
	TotalAmount     primitive.Decimal128 `bson:"totalAmount"`
	CouponCode      string               `bson:"couponCode,omitempty"`
	DiscountAmount  primitive.Decimal128 `bson:"discountAmount"`
	DeliveryCharge  primitive.Decimal128 `bson:"deliveryCharge"`
	TotalWeightKg   primitive.Decimal128 `bson:"totalWeightKg"`
	FinalAmount     primitive.Decimal128 `bson:"finalAmount"`
	Status          string               `bson:"status"`
	PaymentMethod   string               `bson:"paymentMethod"`
	PaymentStatus   string               `bson:"paymentStatus"`
	PaymentProvider string               `bson:"paymentProvider,omitempty"`
	ProviderOrderID string               `bson:"providerOrderId,omitempty"`
	TransactionID   string               `bson:"transactionId,omitempty"`
	FailureReason   string               `bson:"failureReason,omitempty"`
	ShippingAddress string               `bson:"shippingAddress"`
	ShippingState   string               `bson:"shippingState"`
	ShippingPincode string               `bson:"shippingPincode,omitempty"`
	PhoneNumber     string               `bson:"phoneNumber"`
	PaidAt          *time.Time           `bson:"paidAt,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func (d *MongoOrderDoc) ToDomain() *domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.OrderItem{
			Kind:      domain.LineKind(it.Kind),
			ProductID: it.ProductID,
			ComboID:   it.ComboID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: fromDecimal128(it.UnitPrice),
		})
	}
	return &domain.Order{
		ID:              d.ID,
		Number:          d.Number,
		CustomerID:      d.CustomerID,
		Items:           items,
		TotalAmount:     fromDecimal128(d.TotalAmount),
		CouponCode:      d.CouponCode,
		DiscountAmount:  fromDecimal128(d.DiscountAmount),
		DeliveryCharge:  fromDecimal128(d.DeliveryCharge),
		TotalWeightKg:   fromDecimal128(d.TotalWeightKg),
		FinalAmount:     fromDecimal128(d.FinalAmount),
		Status:          domain.OrderStatus(d.Status),
		PaymentMethod:   domain.PaymentMethod(d.PaymentMethod),
		PaymentStatus:   domain.PaymentStatus(d.PaymentStatus),
		PaymentProvider: d.PaymentProvider,
		ProviderOrderID: d.ProviderOrderID,
		TransactionID:   d.TransactionID,
		FailureReason:   d.FailureReason,
		ShippingAddress: d.ShippingAddress,
		ShippingState:   d.ShippingState,
		ShippingPincode: d.ShippingPincode,
		PhoneNumber:     d.PhoneNumber,
		PaidAt:          d.PaidAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func MongoOrderDocFromDomain(o *domain.Order) *MongoOrderDoc {
	items := make([]MongoOrderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, MongoOrderItemDoc{
			Kind:      string(it.Kind),
			ProductID: it.ProductID,
			ComboID:   it.ComboID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: toDecimal128(it.UnitPrice),
		})
	}
	return &MongoOrderDoc{
		ID:              o.ID,
		Number:          o.Number,
		CustomerID:      o.CustomerID,
		Items:           items,
		TotalAmount:     toDecimal128(o.TotalAmount),
		CouponCode:      o.CouponCode,
		DiscountAmount:  toDecimal128(o.DiscountAmount),
		DeliveryCharge:  toDecimal128(o.DeliveryCharge),
		TotalWeightKg:   toDecimal128(o.TotalWeightKg),
		FinalAmount:     toDecimal128(o.FinalAmount),
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentProvider: o.PaymentProvider,
		ProviderOrderID: o.ProviderOrderID,
		TransactionID:   o.TransactionID,
		FailureReason:   o.FailureReason,
		ShippingAddress: o.ShippingAddress,
		ShippingState:   o.ShippingState,
		ShippingPincode: o.ShippingPincode,
		PhoneNumber:     o.PhoneNumber,
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// MongoPaymentEventDoc is the webhook event log entry. The _id is
// "<provider>:<eventId>" so a provider event is stored once.
type MongoPaymentEventDoc struct {
	ID         string    `bson:"_id"`
	EventID    string    `bson:"eventId"`
	Provider   string    `bson:"provider"`
	Type       string    `bson:"type"`
	OrderID    string    `bson:"orderId,omitempty"`
	Status     string    `bson:"status"`
	Detail     string    `bson:"detail,omitempty"`
	ReceivedAt time.Time `bson:"receivedAt"`
}

// PaymentEventKey is the document id of a provider event.
func PaymentEventKey(provider, eventID string) string {
	return provider + ":" + eventID
}

func (d *MongoPaymentEventDoc) ToDomain() *domain.PaymentEventRecord {
	return &domain.PaymentEventRecord{
		EventID:    d.EventID,
		Provider:   d.Provider,
		Type:       d.Type,
		OrderID:    d.OrderID,
		Status:     domain.EventStatus(d.Status),
		Detail:     d.Detail,
		ReceivedAt: d.ReceivedAt,
	}
}

func MongoPaymentEventDocFromDomain(r *domain.PaymentEventRecord) *MongoPaymentEventDoc {
	return &MongoPaymentEventDoc{
		ID:         PaymentEventKey(r.Provider, r.EventID),
		EventID:    r.EventID,
		Provider:   r.Provider,
		Type:       r.Type,
		OrderID:    r.OrderID,
		Status:     string(r.Status),
		Detail:     r.Detail,
		ReceivedAt: r.ReceivedAt,
	}
}
