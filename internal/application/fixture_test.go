package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/application/webhook_handlers"
	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/infrastructure/payments"
	"fishy-friend-storefront/internal/infrastructure/repository/memory"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []domain.OrderEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.OrderEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx       context.Context
	catalog   *memory.CatalogRepository
	carts     *memory.CartRepository
	coupons   *memory.CouponRepository
	orders    *memory.OrderRepository
	eventLog  *memory.PaymentEventRepository
	reviews   *memory.ReviewRepository
	customers *memory.CustomerRepository
	publisher *recordingPublisher

	catalogSvc  *application.CatalogService
	shippingSvc *application.ShippingService
	cartSvc     *application.CartService
	checkoutSvc *application.CheckoutService
	paymentSvc  *application.PaymentService
	orderSvc    *application.OrderService
	reviewSvc   *application.ReviewService

	customer *domain.Customer
	guppy    *domain.Product
	filter   *domain.Product
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &fixture{
		ctx:       context.Background(),
		catalog:   memory.NewCatalogRepository(),
		carts:     memory.NewCartRepository(),
		coupons:   memory.NewCouponRepository(),
		orders:    memory.NewOrderRepository(),
		eventLog:  memory.NewPaymentEventRepository(),
		reviews:   memory.NewReviewRepository(),
		customers: memory.NewCustomerRepository(),
		publisher: &recordingPublisher{},
	}

	shipping := application.NewShippingService(memory.NewShippingSettingsRepository(), logger)
	f.shippingSvc = shipping
	f.catalogSvc = application.NewCatalogService(f.catalog, logger)
	f.cartSvc = application.NewCartService(f.carts, f.catalog, logger)
	f.checkoutSvc = application.NewCheckoutService(f.carts, f.catalog, f.coupons, f.orders, memory.NewSessionStore(), shipping, f.publisher, nil, logger)
	f.orderSvc = application.NewOrderService(f.orders, f.catalog, f.customers, f.publisher, logger)
	f.reviewSvc = application.NewReviewService(f.reviews, f.orders, logger)

	f.paymentSvc = f.paymentServiceOver(t, f.orders)

	require.NoError(t, f.catalog.CreateCategory(f.ctx, &domain.Category{ID: "cat-live", Name: "Livebearers", Type: domain.CategoryFish}))
	require.NoError(t, f.catalog.CreateBreed(f.ctx, &domain.Breed{ID: "breed-guppy", Name: "Guppy", CategoryID: "cat-live"}))
	guppyWeight := money("0.5")
	f.guppy = &domain.Product{
		ID: "p-guppy", Kind: domain.KindFish, Name: "Fancy Guppy", CategoryID: "cat-live", BreedID: "breed-guppy",
		Price: money("150"), WeightKg: &guppyWeight, StockQuantity: 10, MinimumOrderQuantity: 1, Available: true,
	}
	filterWeight := money("0.4")
	f.filter = &domain.Product{
		ID: "p-filter", Kind: domain.KindAccessory, Name: "Sponge Filter",
		Price: money("350"), WeightKg: &filterWeight, StockQuantity: 3, MinimumOrderQuantity: 1, Available: true,
	}
	require.NoError(t, f.catalog.CreateProduct(f.ctx, f.guppy))
	require.NoError(t, f.catalog.CreateProduct(f.ctx, f.filter))

	f.customer = &domain.Customer{ID: "cust-1", Email: "anu@example.com", Name: "Anu", Role: domain.RoleCustomer}
	require.NoError(t, f.customers.SaveCustomer(f.ctx, f.customer))
	return f
}

// paymentServiceOver wires a payment service with its webhook handlers on
// top of orders, sharing the fixture's event log and publisher.
func (f *fixture) paymentServiceOver(t *testing.T, orders ports.OrderRepository) *application.PaymentService {
	t.Helper()
	logger := zerolog.Nop()
	registry, err := application.NewPaymentRegistry(domain.ProviderMock, payments.NewMock("", logger))
	require.NoError(t, err)
	dispatcher := application.NewWebhookDispatcher(logger)
	svc := application.NewPaymentService(orders, f.eventLog, memory.NewIdempotencyStore(), registry, dispatcher, f.publisher, nil, logger,
		application.PaymentOptions{UPIID: "fishyfriend@upi", PayeeName: "Fishy Friend Aquatics"})
	dispatcher.RegisterHandler(webhook_handlers.NewPaymentCapturedHandler(logger, svc))
	dispatcher.RegisterHandler(webhook_handlers.NewPaymentFailedHandler(logger, svc))
	dispatcher.RegisterHandler(webhook_handlers.NewRefundHandler(logger, svc))
	return svc
}

// gate holds callers until n of them have arrived, then lets everyone
// through. Later callers pass straight away.
type gate struct {
	mu      sync.Mutex
	waiting int
	open    chan struct{}
}

func newGate(n int) *gate {
	return &gate{waiting: n, open: make(chan struct{})}
}

func (g *gate) pass() {
	g.mu.Lock()
	if g.waiting > 0 {
		g.waiting--
		if g.waiting == 0 {
			close(g.open)
		}
	}
	g.mu.Unlock()
	<-g.open
}

// gatedOrders makes concurrent requests read the same order before any of
// them writes it.
type gatedOrders struct {
	*memory.OrderRepository
	gate *gate
}

func (g *gatedOrders) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := g.OrderRepository.GetOrder(ctx, id)
	g.gate.pass()
	return o, err
}

func (g *gatedOrders) GetOrderByProviderOrderID(ctx context.Context, provider, providerOrderID string) (*domain.Order, error) {
	o, err := g.OrderRepository.GetOrderByProviderOrderID(ctx, provider, providerOrderID)
	g.gate.pass()
	return o, err
}

func (f *fixture) addToCart(t *testing.T, productID string, qty int) {
	t.Helper()
	_, err := f.cartSvc.AddItem(f.ctx, f.customer, application.AddItemInput{ProductID: productID, Quantity: qty})
	require.NoError(t, err)
}

func (f *fixture) addCoupon(t *testing.T, code string, pct string, limit *int) *domain.Coupon {
	t.Helper()
	now := time.Now()
	c := &domain.Coupon{
		ID: "coupon-" + code, Code: code, DiscountPercentage: money(pct), Audience: domain.AudienceAll,
		Active: true, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(24 * time.Hour), UsageLimit: limit,
	}
	require.NoError(t, f.coupons.CreateCoupon(f.ctx, c))
	return c
}

func (f *fixture) placeOrder(t *testing.T, method domain.PaymentMethod) *domain.Order {
	t.Helper()
	order, err := f.checkoutSvc.PlaceOrder(f.ctx, f.customer, application.PlaceOrderInput{
		ShippingAddress: "12 Canal Road, Kochi",
		PhoneNumber:     "9876543210",
		PaymentMethod:   string(method),
		ShippingState:   "Kerala",
		ShippingPincode: "682001",
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.catalog.GetProduct(f.ctx, productID)
	require.NoError(t, err)
	return p.StockQuantity
}
