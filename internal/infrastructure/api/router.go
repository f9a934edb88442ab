package api

import (
	"encoding/json"
	"net/http"

	"fishy-friend-storefront/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Services are the application services behind the HTTP surface.
type Services struct {
	Catalog   *application.CatalogService
	Cart      *application.CartService
	Checkout  *application.CheckoutService
	Shipping  *application.ShippingService
	Coupons   *application.CouponService
	Orders    *application.OrderService
	Payments  *application.PaymentService
	Reviews   *application.ReviewService
	Customers *application.CustomerService
	Blog      *application.BlogService
	Alerts    *application.StockAlertService
	Staff     *application.StaffService
	Sync      *application.CatalogSyncService
}

// Instrumentation exposes request metrics and the scrape endpoint.
type Instrumentation interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

// RouterConfig holds the HTTP-level settings.
type RouterConfig struct {
	StaffTokenHash string
	SwaggerFile    string
	Metrics        Instrumentation
}

type handler struct {
	svc    Services
	logger zerolog.Logger
}

// NewRouter builds the storefront, staff and webhook routes.
func NewRouter(svc Services, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	if cfg.SwaggerFile == "" {
		cfg.SwaggerFile = "./docs/swagger.json"
	}
	h := &handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(securityHeaders())
	r.Use(inputValidation(logger))
	r.Use(auditLogging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, cfg.SwaggerFile)
	})

	// Providers retry on non-2xx, so these stay outside any auth.
	r.Post("/webhooks/payments/{provider}", h.paymentWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog/products", h.listProducts)
		r.Get("/catalog/products/{id}", h.getProduct)
		r.Get("/catalog/categories", h.listCategories)
		r.Get("/catalog/breeds", h.listBreeds)
		r.Get("/catalog/combos", h.listCombos)
		r.Get("/catalog/offers", h.listOffers)
		r.Get("/reviews", h.publicReviews)
		r.Get("/blog", h.publishedPosts)
		r.Get("/blog/{slug}", h.publishedPost)
		r.Get("/shipping/quote", h.shippingQuote)
		r.Post("/customers", h.registerCustomer)

		r.Group(func(r chi.Router) {
			r.Use(customerAuth(svc.Customers, logger))

			r.Get("/me", h.me)
			r.Put("/me", h.updateMe)

			r.Get("/cart", h.getCart)
			r.Post("/cart/items", h.addCartItem)
			r.Patch("/cart/items/{lineID}", h.updateCartItem)
			r.Delete("/cart/items/{lineID}", h.removeCartItem)

			r.Get("/checkout", h.checkoutSummary)
			r.Post("/checkout/coupon", h.applyCoupon)
			r.Delete("/checkout/coupon", h.removeCoupon)
			r.Post("/checkout/orders", h.placeOrder)

			r.Get("/orders", h.listOrders)
			r.Get("/orders/{id}", h.getOrder)
			r.Post("/orders/{id}/cancel", h.cancelOrder)
			r.Post("/orders/{id}/reviews", h.submitReview)
			r.Post("/orders/{id}/payments", h.startPayment)
			r.Get("/orders/{id}/upi", h.upiInstructions)
			r.Post("/orders/{id}/upi/confirm", h.confirmUPI)

			r.Post("/payments/{provider}/verify", h.verifyPayment)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Use(staffAuth(cfg.StaffTokenHash, logger))
			h.staffRoutes(r)
		})
	})

	return r
}
