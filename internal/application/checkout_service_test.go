package application_test

import (
	"testing"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderWithCoupon(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.guppy.ID, 2)
	f.addToCart(t, f.filter.ID, 1)
	f.addCoupon(t, "SAVE10", "10", nil)

	applied, err := f.checkoutSvc.ApplyCoupon(f.ctx, f.customer, " save10 ")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", applied.CouponCode)
	assert.True(t, applied.Discount.Equal(money("65")), applied.Discount.String())

	order := f.placeOrder(t, domain.MethodCard)

	// 650 subtotal, 1.4 kg billed as 2 kg at the home rate of 60.
	assert.True(t, order.TotalAmount.Equal(money("650")), order.TotalAmount.String())
	assert.True(t, order.DiscountAmount.Equal(money("65")), order.DiscountAmount.String())
	assert.True(t, order.DeliveryCharge.Equal(money("120")), order.DeliveryCharge.String())
	assert.True(t, order.FinalAmount.Equal(money("705")), order.FinalAmount.String())
	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Regexp(t, `^ORD\d{6}$`, order.Number)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 8, f.stock(t, f.guppy.ID))
	assert.Equal(t, 2, f.stock(t, f.filter.ID))

	coupon, err := f.coupons.GetCouponByCode(f.ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.TimesUsed)

	cart, err := f.carts.GetCart(f.ctx, f.customer.ID)
	require.NoError(t, err)
	assert.True(t, cart == nil || cart.IsEmpty())

	summary, err := f.checkoutSvc.Summary(f.ctx, f.customer, "")
	require.NoError(t, err)
	assert.Empty(t, summary.CouponCode, "coupon is forgotten after checkout")

	assert.Equal(t, []domain.OrderEventType{domain.EventOrderCreated}, f.publisher.types())
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkoutSvc.PlaceOrder(f.ctx, f.customer, application.PlaceOrderInput{
		ShippingAddress: "x", PhoneNumber: "1", PaymentMethod: "card", ShippingState: "Kerala",
	})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestPlaceOrderValidatesForm(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.guppy.ID, 1)

	tests := []struct {
		name  string
		in    application.PlaceOrderInput
		field string
	}{
		{"missing address", application.PlaceOrderInput{PhoneNumber: "1", PaymentMethod: "card", ShippingState: "Kerala"}, "shipping_address"},
		{"missing phone", application.PlaceOrderInput{ShippingAddress: "x", PaymentMethod: "card", ShippingState: "Kerala"}, "phone_number"},
		{"missing state", application.PlaceOrderInput{ShippingAddress: "x", PhoneNumber: "1", PaymentMethod: "card"}, "shipping_state"},
		{"unknown method", application.PlaceOrderInput{ShippingAddress: "x", PhoneNumber: "1", PaymentMethod: "cheque", ShippingState: "Kerala"}, "payment_method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.checkoutSvc.PlaceOrder(f.ctx, f.customer, tt.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Equal(t, 10, f.stock(t, f.guppy.ID))
}

func TestPlaceOrderOutOfStockLeavesStockAndCoupon(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.guppy.ID, 1)
	f.addToCart(t, f.filter.ID, 4)
	limit := 5
	f.addCoupon(t, "FISH5", "5", &limit)
	_, err := f.checkoutSvc.ApplyCoupon(f.ctx, f.customer, "FISH5")
	require.NoError(t, err)

	_, err = f.checkoutSvc.PlaceOrder(f.ctx, f.customer, application.PlaceOrderInput{
		ShippingAddress: "x", PhoneNumber: "1", PaymentMethod: "upi", ShippingState: "Kerala",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Only 3 of Sponge Filter left")

	assert.Equal(t, 10, f.stock(t, f.guppy.ID))
	assert.Equal(t, 3, f.stock(t, f.filter.ID))
	coupon, err := f.coupons.GetCouponByCode(f.ctx, "FISH5")
	require.NoError(t, err)
	assert.Equal(t, 0, coupon.TimesUsed)
	assert.Empty(t, f.publisher.types())
}

func TestPlaceOrderDropsCouponExhaustedMeanwhile(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.guppy.ID, 1)
	limit := 1
	coupon := f.addCoupon(t, "ONCE", "50", &limit)
	_, err := f.checkoutSvc.ApplyCoupon(f.ctx, f.customer, "ONCE")
	require.NoError(t, err)

	ok, err := f.coupons.ReserveUsage(f.ctx, coupon.ID)
	require.NoError(t, err)
	require.True(t, ok)

	order := f.placeOrder(t, domain.MethodUPI)
	assert.Empty(t, order.CouponCode)
	assert.True(t, order.DiscountAmount.IsZero())
	assert.True(t, order.FinalAmount.Equal(money("210")), order.FinalAmount.String())
}

func TestApplyCouponRefusals(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.guppy.ID, 1)
	big := f.addCoupon(t, "BIG", "20", nil)
	big.MinOrderAmount = money("1000")
	require.NoError(t, f.coupons.UpdateCoupon(f.ctx, big))

	tests := []struct {
		code   string
		reason domain.CouponReason
	}{
		{"", domain.CouponMissingCode},
		{"NOPE", domain.CouponUnknown},
		{"BIG", domain.CouponMinimumOrder},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			_, err := f.checkoutSvc.ApplyCoupon(f.ctx, f.customer, tt.code)
			var cerr *domain.CouponError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.reason, cerr.Reason)
		})
	}
}

func TestSummaryReportsUnserviceableState(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.guppy.ID, 2)
	_, err := f.shippingSvc.UpdateSettings(f.ctx, &domain.ShippingSettings{
		HomeState:           "Kerala",
		HomeRate:            money("60"),
		DefaultRate:         money("100"),
		UnserviceableStates: []string{"Assam"},
	})
	require.NoError(t, err)

	summary, err := f.checkoutSvc.Summary(f.ctx, f.customer, "assam")
	require.NoError(t, err)
	assert.Nil(t, summary.Shipping)
	assert.NotEmpty(t, summary.ShippingError)
	assert.True(t, summary.FinalTotal.Equal(money("300")), summary.FinalTotal.String())

	summary, err = f.checkoutSvc.Summary(f.ctx, f.customer, "Goa")
	require.NoError(t, err)
	require.NotNil(t, summary.Shipping)
	assert.True(t, summary.FinalTotal.Equal(money("400")), summary.FinalTotal.String())

	_, err = f.checkoutSvc.PlaceOrder(f.ctx, f.customer, application.PlaceOrderInput{
		ShippingAddress: "x", PhoneNumber: "1", PaymentMethod: "card", ShippingState: "Assam",
	})
	assert.True(t, domain.IsUnserviceable(err))
}

func TestSummaryDropsStoredCouponThatTurnedInvalid(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.guppy.ID, 2)
	coupon := f.addCoupon(t, "SPRING", "10", nil)
	_, err := f.checkoutSvc.ApplyCoupon(f.ctx, f.customer, "SPRING")
	require.NoError(t, err)

	summary, err := f.checkoutSvc.Summary(f.ctx, f.customer, "")
	require.NoError(t, err)
	assert.Equal(t, "SPRING", summary.CouponCode)

	coupon.Active = false
	require.NoError(t, f.coupons.UpdateCoupon(f.ctx, coupon))

	summary, err = f.checkoutSvc.Summary(f.ctx, f.customer, "")
	require.NoError(t, err)
	assert.Empty(t, summary.CouponCode)
	assert.True(t, summary.Discount.IsZero())
	assert.True(t, summary.FinalTotal.Equal(money("300")), summary.FinalTotal.String())

	// Reactivating does not bring back a code that was dropped.
	coupon.Active = true
	require.NoError(t, f.coupons.UpdateCoupon(f.ctx, coupon))
	summary, err = f.checkoutSvc.Summary(f.ctx, f.customer, "")
	require.NoError(t, err)
	assert.Empty(t, summary.CouponCode)
}

func TestPlaceOrderWithComboLine(t *testing.T) {
	f := newFixture(t)
	combo, err := f.catalogSvc.CreateCombo(f.ctx, &domain.Combo{
		Title:  "Starter Kit",
		Active: true,
		Items:  []domain.ComboItem{{ProductID: f.guppy.ID, Quantity: 2}, {ProductID: f.filter.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(f.ctx, f.customer, application.AddItemInput{ComboID: combo.ID, Quantity: 2})
	require.NoError(t, err)

	order := f.placeOrder(t, domain.MethodCard)

	require.Len(t, order.Items, 1)
	assert.Equal(t, domain.LineCombo, order.Items[0].Kind)
	assert.Equal(t, combo.ID, order.Items[0].ComboID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	// Each kit is 650 and weighs 1.4 kg; 2.8 kg bills as 3 kg at 60.
	assert.True(t, order.TotalAmount.Equal(money("1300")), order.TotalAmount.String())
	assert.True(t, order.TotalWeightKg.Equal(money("2.8")), order.TotalWeightKg.String())
	assert.True(t, order.DeliveryCharge.Equal(money("180")), order.DeliveryCharge.String())
	assert.True(t, order.FinalAmount.Equal(money("1480")), order.FinalAmount.String())

	assert.Equal(t, 6, f.stock(t, f.guppy.ID))
	assert.Equal(t, 1, f.stock(t, f.filter.ID))

	_, err = f.orderSvc.Cancel(f.ctx, f.customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, f.guppy.ID))
	assert.Equal(t, 3, f.stock(t, f.filter.ID))
}
