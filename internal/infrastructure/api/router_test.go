package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/application/webhook_handlers"
	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/infrastructure/api"
	"fishy-friend-storefront/internal/infrastructure/payments"
	"fishy-friend-storefront/internal/infrastructure/repository/memory"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	staffToken    = "s3cret-staff-token"
	webhookSecret = "whsec_test"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *domain.OrderEvent) error { return nil }

type mailbox struct {
	mu   sync.Mutex
	sent []ports.Email
}

func (m *mailbox) Send(_ context.Context, email ports.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

type server struct {
	t       *testing.T
	handler http.Handler
	catalog *memory.CatalogRepository
	mail    *mailbox
}

func newServer(t *testing.T) *server {
	t.Helper()
	logger := zerolog.Nop()
	ctx := context.Background()

	catalog := memory.NewCatalogRepository()
	carts := memory.NewCartRepository()
	coupons := memory.NewCouponRepository()
	orders := memory.NewOrderRepository()
	customers := memory.NewCustomerRepository()
	reviews := memory.NewReviewRepository()
	publisher := nopPublisher{}

	shipping := application.NewShippingService(memory.NewShippingSettingsRepository(), logger)
	registry, err := application.NewPaymentRegistry(domain.ProviderMock, payments.NewMock(webhookSecret, logger))
	require.NoError(t, err)
	dispatcher := application.NewWebhookDispatcher(logger)
	paymentSvc := application.NewPaymentService(orders, memory.NewPaymentEventRepository(), memory.NewIdempotencyStore(),
		registry, dispatcher, publisher, nil, logger, application.PaymentOptions{UPIID: "fishyfriend@upi"})
	dispatcher.RegisterHandler(webhook_handlers.NewPaymentCapturedHandler(logger, paymentSvc))
	dispatcher.RegisterHandler(webhook_handlers.NewPaymentFailedHandler(logger, paymentSvc))
	dispatcher.RegisterHandler(webhook_handlers.NewRefundHandler(logger, paymentSvc))

	alerts := application.NewStockAlertService(memory.NewStockAlertRepository(), 0, logger)
	mail := &mailbox{}
	svc := api.Services{
		Catalog:   application.NewCatalogService(alerts.Watch(catalog), logger),
		Cart:      application.NewCartService(carts, catalog, logger),
		Checkout:  application.NewCheckoutService(carts, catalog, coupons, orders, memory.NewSessionStore(), shipping, publisher, nil, logger),
		Shipping:  shipping,
		Coupons:   application.NewCouponService(coupons, logger),
		Orders:    application.NewOrderService(orders, catalog, customers, publisher, logger),
		Payments:  paymentSvc,
		Reviews:   application.NewReviewService(reviews, orders, logger),
		Customers: application.NewCustomerService(customers, logger),
		Blog:      application.NewBlogService(memory.NewBlogRepository(), logger),
		Alerts:    alerts,
		Staff:     application.NewStaffService(customers, mail, "Fishy Friend Aquatics", logger),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(staffToken), bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, catalog.CreateCategory(ctx, &domain.Category{ID: "cat-live", Name: "Livebearers", Type: domain.CategoryFish}))
	require.NoError(t, catalog.CreateBreed(ctx, &domain.Breed{ID: "breed-guppy", Name: "Guppy", CategoryID: "cat-live"}))
	weight := decimal.RequireFromString("0.5")
	require.NoError(t, catalog.CreateProduct(ctx, &domain.Product{
		ID: "p-guppy", Kind: domain.KindFish, Name: "Fancy Guppy", CategoryID: "cat-live", BreedID: "breed-guppy",
		Price: decimal.NewFromInt(150), WeightKg: &weight, StockQuantity: 10, MinimumOrderQuantity: 1, Available: true,
	}))
	require.NoError(t, customers.SaveCustomer(ctx, &domain.Customer{ID: "cust-1", Email: "anu@example.com", Name: "Anu", Role: domain.RoleCustomer}))
	require.NoError(t, customers.SaveCustomer(ctx, &domain.Customer{ID: "cust-blocked", Email: "spam@example.com", Blocked: true}))

	return &server{
		t:       t,
		handler: api.NewRouter(svc, api.RouterConfig{StaffTokenHash: string(hash)}, logger),
		catalog: catalog,
		mail:    mail,
	}
}

type request struct {
	method   string
	path     string
	body     string
	customer string
	staff    bool
	headers  map[string]string
}

func (s *server) do(req request) *httptest.ResponseRecorder {
	s.t.Helper()
	r := httptest.NewRequest(req.method, req.path, strings.NewReader(req.body))
	if req.body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.customer != "" {
		r.Header.Set(api.CustomerHeader, req.customer)
	}
	if req.staff {
		r.Header.Set("Authorization", "Bearer "+staffToken)
		r.Header.Set(api.StaffActorHeader, "meera")
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestCustomerAuth(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name     string
		customer string
		want     int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"unknown customer", "ghost", http.StatusUnauthorized},
		{"blocked customer", "cust-blocked", http.StatusForbidden},
		{"known customer", "cust-1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(request{method: http.MethodGet, path: "/api/v1/me", customer: tt.customer})
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestStaffAuth(t *testing.T) {
	s := newServer(t)

	w := s.do(request{method: http.MethodGet, path: "/api/v1/staff/dashboard"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/staff/dashboard", headers: map[string]string{"Authorization": "Bearer wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/staff/dashboard", staff: true})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(request{method: http.MethodPost, path: "/api/v1/staff/products/sync", staff: true})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRejectsNonJSONBodies(t *testing.T) {
	s := newServer(t)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader("product_id=p-guppy"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set(api.CustomerHeader, "cust-1")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = s.do(request{method: http.MethodPost, path: "/api/v1/cart/items", customer: "cust-1", body: `{"product_id":"p-guppy","colour":"red"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown fields are refused")
}

func TestCatalogHidesUnavailableProducts(t *testing.T) {
	s := newServer(t)

	w := s.do(request{method: http.MethodPost, path: "/api/v1/staff/products", staff: true,
		body: `{"kind":"plant","name":"Java Fern","price":"90","stock_quantity":4}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fern := decode[domain.Product](t, w)
	assert.False(t, fern.Available)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/catalog/products"})
	require.Equal(t, http.StatusOK, w.Code)
	products := decode[[]domain.Product](t, w)
	require.Len(t, products, 1)
	assert.Equal(t, "p-guppy", products[0].ID)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/catalog/products/" + fern.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/staff/products/" + fern.ID, staff: true})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShippingQuote(t *testing.T) {
	s := newServer(t)

	w := s.do(request{method: http.MethodGet, path: "/api/v1/shipping/quote?weight=1.2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/shipping/quote?state=Kerala&weight=heavy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/shipping/quote?state=Kerala&weight=1.2"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func placeOrder(t *testing.T, s *server, method string) domain.Order {
	t.Helper()
	w := s.do(request{method: http.MethodPost, path: "/api/v1/cart/items", customer: "cust-1", body: `{"product_id":"p-guppy","quantity":2}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(request{method: http.MethodGet, path: "/api/v1/checkout?state=Kerala", customer: "cust-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(request{method: http.MethodPost, path: "/api/v1/checkout/orders", customer: "cust-1", body: fmt.Sprintf(
		`{"shipping_address":"12 Canal Road, Kochi","phone_number":"9876543210","payment_method":%q,"shipping_state":"Kerala"}`, method)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Order](t, w)
}

func TestCheckoutAndCancel(t *testing.T) {
	s := newServer(t)
	order := placeOrder(t, s, "card")
	assert.True(t, order.FinalAmount.Equal(decimal.NewFromInt(360)), order.FinalAmount.String())

	w := s.do(request{method: http.MethodPost, path: "/api/v1/checkout/orders", customer: "cust-1",
		body: `{"shipping_address":"x","phone_number":"1","payment_method":"card","shipping_state":"Kerala"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code, "cart is empty after checkout")

	w = s.do(request{method: http.MethodGet, path: "/api/v1/orders/" + order.ID, customer: "cust-blocked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(request{method: http.MethodPost, path: "/api/v1/orders/" + order.ID + "/cancel", customer: "cust-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.OrderCancelled, decode[domain.Order](t, w).Status)

	w = s.do(request{method: http.MethodPost, path: "/api/v1/orders/" + order.ID + "/cancel", customer: "cust-1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	product, err := s.catalog.GetProduct(context.Background(), "p-guppy")
	require.NoError(t, err)
	assert.Equal(t, 10, product.StockQuantity)
}

func TestPaymentWebhook(t *testing.T) {
	s := newServer(t)
	order := placeOrder(t, s, "card")

	w := s.do(request{method: http.MethodPost, path: "/api/v1/orders/" + order.ID + "/payments", customer: "cust-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	checkout := decode[domain.ProviderCheckout](t, w)

	payload := fmt.Sprintf(`{"id":"evt_1","type":"paid","provider_order_id":%q,"payment_id":"pay_1","amount":%d}`,
		checkout.ProviderOrderID, checkout.AmountMinor)

	w = s.do(request{method: http.MethodPost, path: "/webhooks/payments/mock", body: payload,
		headers: map[string]string{payments.MockSignatureHeader: "bad"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(request{method: http.MethodPost, path: "/webhooks/payments/paypal", body: payload})
	assert.Equal(t, http.StatusNotFound, w.Code)

	signed := map[string]string{payments.MockSignatureHeader: payments.Sign(webhookSecret, payload)}
	w = s.do(request{method: http.MethodPost, path: "/webhooks/payments/mock", body: payload, headers: signed})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.EventProcessed, decode[application.WebhookResult](t, w).Status)

	w = s.do(request{method: http.MethodPost, path: "/webhooks/payments/mock", body: payload, headers: signed})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[application.WebhookResult](t, w).Duplicate)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/orders/" + order.ID, customer: "cust-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.PaymentPaid, decode[domain.Order](t, w).PaymentStatus)

	w = s.do(request{method: http.MethodPost, path: "/api/v1/orders/" + order.ID + "/payments", customer: "cust-1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStaffOrderWorkflow(t *testing.T) {
	s := newServer(t)
	order := placeOrder(t, s, "upi")

	w := s.do(request{method: http.MethodPost, path: "/api/v1/staff/orders/" + order.ID + "/status", staff: true, body: `{"status":"delivered"}`})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(request{method: http.MethodPost, path: "/api/v1/staff/orders/" + order.ID + "/status", staff: true, body: `{"status":"processing"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(request{method: http.MethodGet, path: "/api/v1/staff/orders/export.csv", staff: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders_")
	assert.Contains(t, w.Body.String(), order.Number)

	w = s.do(request{method: http.MethodPost, path: "/api/v1/staff/customers/cust-1/block", staff: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(request{method: http.MethodGet, path: "/api/v1/cart", customer: "cust-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBlogRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(request{method: http.MethodPost, path: "/api/v1/staff/blog", staff: true,
		body: `{"title":"Feeding Bettas","content":"<p>Twice a day.</p><img src=x onerror=alert(1)>","published":true}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[domain.BlogPost](t, w)
	assert.Equal(t, "feeding-bettas", post.Slug)
	assert.Equal(t, "meera", post.Author)
	assert.NotContains(t, post.Content, "onerror")

	w = s.do(request{method: http.MethodPost, path: "/api/v1/staff/blog", staff: true,
		body: `{"title":"Plant notes","content":"draft"}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	draft := decode[domain.BlogPost](t, w)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/blog"})
	require.Equal(t, http.StatusOK, w.Code)
	public := decode[[]domain.BlogPost](t, w)
	require.Len(t, public, 1)
	assert.Equal(t, post.ID, public[0].ID)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/blog/feeding-bettas"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(request{method: http.MethodGet, path: "/api/v1/blog/" + draft.Slug})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(request{method: http.MethodPost, path: "/api/v1/staff/blog", body: `{"title":"x","content":"y"}`})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(request{method: http.MethodPut, path: "/api/v1/staff/blog/" + draft.ID, staff: true,
		body: `{"title":"Plant notes","content":"ready","published":true}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(request{method: http.MethodGet, path: "/api/v1/blog"})
	assert.Len(t, decode[[]domain.BlogPost](t, w), 2)

	w = s.do(request{method: http.MethodDelete, path: "/api/v1/staff/blog/" + post.ID, staff: true})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(request{method: http.MethodGet, path: "/api/v1/blog/feeding-bettas"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStockAlertRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(request{method: http.MethodPut, path: "/api/v1/staff/products/p-guppy", staff: true,
		body: `{"kind":"fish","name":"Fancy Guppy","category_id":"cat-live","breed_id":"breed-guppy","price":"150","weight_kg":"0.5","stock_quantity":0,"minimum_order_quantity":1,"available":true}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(request{method: http.MethodGet, path: "/api/v1/staff/alerts?unread=true", staff: true})
	require.Equal(t, http.StatusOK, w.Code)
	alerts := decode[[]domain.StockAlert](t, w)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertCritical, alerts[0].Level)

	w = s.do(request{method: http.MethodPost, path: "/api/v1/staff/alerts/" + alerts[0].ID + "/read", staff: true})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(request{method: http.MethodGet, path: "/api/v1/staff/alerts?unread=true", staff: true})
	assert.Empty(t, decode[[]domain.StockAlert](t, w))

	w = s.do(request{method: http.MethodPost, path: "/api/v1/staff/alerts/read-all", staff: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"marked":0}`, w.Body.String())
}

func TestStaffTeamRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(request{method: http.MethodPost, path: "/api/v1/staff/team/cust-1", staff: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.RoleStaff, decode[domain.Customer](t, w).Role)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/staff/team", staff: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Customer](t, w), 1)

	w = s.do(request{method: http.MethodDelete, path: "/api/v1/staff/team/cust-1", staff: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.RoleCustomer, decode[domain.Customer](t, w).Role)

	w = s.do(request{method: http.MethodDelete, path: "/api/v1/staff/team/cust-1", staff: true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.mail.mu.Lock()
	defer s.mail.mu.Unlock()
	require.Len(t, s.mail.sent, 2)
	assert.Equal(t, "Staff access removed — Fishy Friend Aquatics", s.mail.sent[1].Subject)
}
