package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// couponSessionTTL is how long an applied coupon is remembered.
const couponSessionTTL = 24 * time.Hour

const orderNumberAttempts = 5

// CheckoutService turns a cart into an order.
type CheckoutService struct {
	carts    ports.CartRepository
	catalog  ports.CatalogRepository
	coupons  ports.CouponRepository
	orders   ports.OrderRepository
	sessions ports.CheckoutSessionStore
	shipping *ShippingService
	events   orderEvents
	metrics  ports.Metrics
	logger   zerolog.Logger
	now      clock
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	carts ports.CartRepository,
	catalog ports.CatalogRepository,
	coupons ports.CouponRepository,
	orders ports.OrderRepository,
	sessions ports.CheckoutSessionStore,
	shipping *ShippingService,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	logger zerolog.Logger,
) *CheckoutService {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &CheckoutService{
		carts:    carts,
		catalog:  catalog,
		coupons:  coupons,
		orders:   orders,
		sessions: sessions,
		shipping: shipping,
		events:   orderEvents{publisher: publisher, logger: logger, now: time.Now},
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Summary is the checkout page: priced cart, coupon, shipping and total.
type Summary struct {
	Cart               *domain.PricedCart    `json:"cart"`
	CouponCode         string                `json:"coupon_code,omitempty"`
	DiscountPercentage decimal.Decimal       `json:"discount_percentage"`
	Discount           decimal.Decimal       `json:"discount"`
	Shipping           *domain.ShippingQuote `json:"shipping,omitempty"`
	ShippingError      string                `json:"shipping_error,omitempty"`
	FinalTotal         decimal.Decimal       `json:"final_total"`
	Suggestions        []*domain.Coupon      `json:"suggested_coupons"`
}

// Summary prices the customer's cart. Shipping is quoted when state is given.
func (s *CheckoutService) Summary(ctx context.Context, customer *domain.Customer, state string) (*Summary, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	cart, err := s.cart(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	priced, err := priceCart(ctx, s.catalog, cart)
	if err != nil {
		return nil, err
	}
	subtotal := priced.Totals.Subtotal

	summary := &Summary{Cart: priced, Discount: decimal.Zero, DiscountPercentage: decimal.Zero}
	coupon, err := s.appliedCoupon(ctx, customer, subtotal)
	if err != nil {
		return nil, err
	}
	if coupon != nil {
		summary.CouponCode = coupon.Code
		summary.DiscountPercentage = coupon.DiscountPercentage
		summary.Discount = coupon.Discount(subtotal)
	}

	delivery := decimal.Zero
	if strings.TrimSpace(state) != "" {
		quote, err := s.shipping.Quote(ctx, state, priced.Totals.TotalWeightKg)
		switch {
		case err == nil:
			summary.Shipping = quote
			delivery = quote.Charge
		case domain.IsUnserviceable(err):
			summary.ShippingError = unserviceableMessage(err)
		default:
			return nil, err
		}
	}
	summary.FinalTotal = domain.ComputeFinalAmount(subtotal, summary.Discount, delivery)

	all, err := s.coupons.ListCoupons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	summary.Suggestions = domain.SuggestCoupons(all, customer, subtotal, s.now())
	return summary, nil
}

// ApplyCouponResult is returned after a coupon is accepted.
type ApplyCouponResult struct {
	Discount           decimal.Decimal `json:"discount"`
	FinalTotal         decimal.Decimal `json:"final_total"`
	CouponCode         string          `json:"coupon_code"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Message            string          `json:"message"`
}

// ApplyCoupon checks code against the current cart and remembers it.
func (s *CheckoutService) ApplyCoupon(ctx context.Context, customer *domain.Customer, code string) (*ApplyCouponResult, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	code = domain.NormalizeCouponCode(code)
	if code == "" {
		return nil, &domain.CouponError{Reason: domain.CouponMissingCode, Message: "Please enter a coupon code"}
	}
	coupon, err := s.coupons.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, &domain.CouponError{Reason: domain.CouponUnknown, Message: "Invalid coupon code"}
	}

	cart, err := s.cart(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	priced, err := priceCart(ctx, s.catalog, cart)
	if err != nil {
		return nil, err
	}
	subtotal := priced.Totals.Subtotal
	if err := coupon.Check(customer, subtotal, s.now()); err != nil {
		return nil, err
	}

	session := &domain.CheckoutSession{
		CustomerID: customer.ID,
		CouponCode: coupon.Code,
		ExpiresAt:  s.now().Add(couponSessionTTL),
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save checkout session: %w", err)
	}

	discount := coupon.Discount(subtotal)
	return &ApplyCouponResult{
		Discount:           discount,
		FinalTotal:         domain.ComputeFinalAmount(subtotal, discount, decimal.Zero),
		CouponCode:         coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
		Message:            "Coupon applied! You saved " + domain.FormatRupees(discount),
	}, nil
}

// RemoveCoupon forgets the applied coupon and returns the cart subtotal.
func (s *CheckoutService) RemoveCoupon(ctx context.Context, customer *domain.Customer) (decimal.Decimal, error) {
	if err := requireCustomer(customer); err != nil {
		return decimal.Zero, err
	}
	if err := s.sessions.DeleteSession(ctx, customer.ID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to clear checkout session: %w", err)
	}
	cart, err := s.cart(ctx, customer.ID)
	if err != nil {
		return decimal.Zero, err
	}
	priced, err := priceCart(ctx, s.catalog, cart)
	if err != nil {
		return decimal.Zero, err
	}
	return priced.Totals.Subtotal, nil
}

// PlaceOrderInput is the checkout form.
type PlaceOrderInput struct {
	ShippingAddress string `json:"shipping_address"`
	PhoneNumber     string `json:"phone_number"`
	PaymentMethod   string `json:"payment_method"`
	ShippingState   string `json:"shipping_state"`
	ShippingPincode string `json:"shipping_pincode"`
}

func (in *PlaceOrderInput) validate() (domain.PaymentMethod, error) {
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.ShippingState = strings.TrimSpace(in.ShippingState)
	in.ShippingPincode = strings.TrimSpace(in.ShippingPincode)
	switch {
	case in.ShippingAddress == "":
		return "", domain.NewValidationError("shipping_address", "Shipping address is required.")
	case in.PhoneNumber == "":
		return "", domain.NewValidationError("phone_number", "Phone number is required.")
	case strings.TrimSpace(in.PaymentMethod) == "":
		return "", domain.NewValidationError("payment_method", "Please choose a payment method.")
	case in.ShippingState == "":
		return "", domain.NewValidationError("shipping_state", "Please choose your state for delivery.")
	}
	return domain.ParsePaymentMethod(in.PaymentMethod)
}

// PlaceOrder creates a pending order from the customer's cart, reserving
// stock and coupon usage, then empties the cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, customer *domain.Customer, in PlaceOrderInput) (*domain.Order, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	cart, err := s.cart(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	method, err := in.validate()
	if err != nil {
		return nil, err
	}

	products, combos, err := catalogFor(ctx, s.catalog, cart)
	if err != nil {
		return nil, err
	}
	priced := domain.PriceCart(cart, products, combos)
	if len(priced.Missing) > 0 {
		return nil, domain.NewValidationError("cart", "Some items in your cart are no longer available. Please review your cart.")
	}
	demand, err := stockDemand(cart, products, combos)
	if err != nil {
		return nil, err
	}

	quote, err := s.shipping.Quote(ctx, in.ShippingState, priced.Totals.TotalWeightKg)
	if err != nil {
		return nil, err
	}

	subtotal := priced.Totals.Subtotal
	discount := decimal.Zero
	coupon, err := s.appliedCoupon(ctx, customer, subtotal)
	if err != nil {
		return nil, err
	}
	if coupon != nil {
		reserved, err := s.coupons.ReserveUsage(ctx, coupon.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve coupon usage: %w", err)
		}
		if reserved {
			discount = coupon.Discount(subtotal)
		} else {
			s.logger.Warn().Str("code", coupon.Code).Str("customerId", customer.ID).Msg("Coupon usage limit reached during checkout, placing order without it")
			coupon = nil
		}
	}
	release := func() {
		if coupon == nil {
			return
		}
		if err := s.coupons.ReleaseUsage(ctx, coupon.ID); err != nil {
			s.logger.Error().Err(err).Str("code", coupon.Code).Msg("Failed to release coupon usage")
		}
	}

	number, err := s.orderNumber(ctx)
	if err != nil {
		release()
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		ID:              newID(),
		Number:          number,
		CustomerID:      customer.ID,
		Items:           orderItems(priced),
		TotalAmount:     subtotal,
		DiscountAmount:  discount,
		DeliveryCharge:  quote.Charge,
		TotalWeightKg:   priced.Totals.TotalWeightKg,
		FinalAmount:     domain.ComputeFinalAmount(subtotal, discount, quote.Charge),
		Status:          domain.OrderPending,
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentPending,
		ShippingAddress: in.ShippingAddress,
		ShippingState:   quote.State,
		ShippingPincode: in.ShippingPincode,
		PhoneNumber:     in.PhoneNumber,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if coupon != nil {
		order.CouponCode = coupon.Code
	}

	taken, err := s.takeStock(ctx, demand, products)
	if err != nil {
		release()
		return nil, err
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.restoreStock(ctx, taken)
		release()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.carts.ClearCart(ctx, customer.ID); err != nil {
		s.logger.Error().Err(err).Str("customerId", customer.ID).Msg("Failed to clear cart after checkout")
	}
	if err := s.sessions.DeleteSession(ctx, customer.ID); err != nil {
		s.logger.Error().Err(err).Str("customerId", customer.ID).Msg("Failed to clear checkout session")
	}

	s.logger.Info().
		Str("orderNumber", order.Number).
		Str("customerId", customer.ID).
		Str("finalAmount", order.FinalAmount.StringFixed(2)).
		Str("coupon", order.CouponCode).
		Str("paymentMethod", string(method)).
		Msg("Order placed")
	s.metrics.OrderPlaced(method, order.FinalAmount.InexactFloat64())
	s.events.publish(ctx, domain.EventOrderCreated, order)
	return order, nil
}

func (s *CheckoutService) cart(ctx context.Context, customerID string) (*domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart == nil {
		cart = &domain.Cart{CustomerID: customerID}
	}
	return cart, nil
}

// appliedCoupon re-validates the remembered coupon. A code that is unknown
// or no longer usable is forgotten without telling the customer.
func (s *CheckoutService) appliedCoupon(ctx context.Context, customer *domain.Customer, subtotal decimal.Decimal) (*domain.Coupon, error) {
	session, err := s.sessions.GetSession(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}
	if session == nil || session.CouponCode == "" {
		return nil, nil
	}
	coupon, err := s.coupons.GetCouponByCode(ctx, session.CouponCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon != nil && coupon.Check(customer, subtotal, s.now()) == nil {
		return coupon, nil
	}
	if err := s.sessions.DeleteSession(ctx, customer.ID); err != nil {
		s.logger.Warn().Err(err).Str("customerId", customer.ID).Msg("Failed to drop stale coupon")
	}
	return nil, nil
}

func (s *CheckoutService) orderNumber(ctx context.Context) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		number := domain.GenerateOrderNumber()
		existing, err := s.orders.GetOrderByNumber(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to check order number: %w", err)
		}
		if existing == nil {
			return number, nil
		}
	}
	return "", errors.New("failed to generate a unique order number")
}

// stockDemand sums the units each product must supply, counting combo
// items once per bundle, and checks availability.
func stockDemand(cart *domain.Cart, products map[string]*domain.Product, combos map[string]*domain.Combo) (map[string]int, error) {
	demand := make(map[string]int)
	for _, line := range cart.Lines {
		if line.Kind == domain.LineCombo {
			combo := combos[line.ComboID]
			if !combo.Active {
				return nil, domain.NewValidationError("cart", "%s is no longer available.", combo.Title)
			}
			for _, item := range combo.Items {
				demand[item.ProductID] += item.Quantity * line.Quantity
			}
			continue
		}
		demand[line.ProductID] += line.Quantity
	}
	for id, qty := range demand {
		p, ok := products[id]
		if !ok {
			return nil, domain.NewValidationError("cart", "Some items in your cart are no longer available. Please review your cart.")
		}
		if !p.Sellable(qty) {
			if !p.Available || p.StockQuantity <= 0 {
				return nil, domain.NewValidationError("cart", "%s is out of stock.", p.Name)
			}
			return nil, domain.NewValidationError("cart", "Only %d of %s left in stock.", p.StockQuantity, p.Name)
		}
	}
	return demand, nil
}

func (s *CheckoutService) takeStock(ctx context.Context, demand map[string]int, products map[string]*domain.Product) (map[string]int, error) {
	taken := make(map[string]int, len(demand))
	for id, qty := range demand {
		if err := s.catalog.AdjustStock(ctx, id, -qty); err != nil {
			s.restoreStock(ctx, taken)
			if errors.Is(err, domain.ErrOutOfStock) {
				return nil, domain.NewValidationError("cart", "%s sold out while you were checking out.", products[id].Name)
			}
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		taken[id] = qty
	}
	return taken, nil
}

func (s *CheckoutService) restoreStock(ctx context.Context, taken map[string]int) {
	for id, qty := range taken {
		if err := s.catalog.AdjustStock(ctx, id, qty); err != nil {
			s.logger.Error().Err(err).Str("productId", id).Int("quantity", qty).Msg("Failed to restore stock")
		}
	}
}

func orderItems(priced *domain.PricedCart) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(priced.Lines))
	for _, pl := range priced.Lines {
		items = append(items, domain.OrderItem{
			Kind:      pl.Line.Kind,
			ProductID: pl.Line.ProductID,
			ComboID:   pl.Line.ComboID,
			Name:      pl.Name,
			Quantity:  pl.Line.Quantity,
			UnitPrice: pl.UnitPrice,
		})
	}
	return items
}

func unserviceableMessage(err error) string {
	var u *domain.UnserviceableError
	if errors.As(err, &u) {
		return "Delivery is currently unavailable in " + u.State + "."
	}
	return err.Error()
}
