// Package metrics exports storefront counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Prometheus implements ports.Metrics on its own registry.
type Prometheus struct {
	registry        *prometheus.Registry
	ordersPlaced    *prometheus.CounterVec
	orderValue      *prometheus.CounterVec
	paymentOutcomes *prometheus.CounterVec
	webhooks        *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

var _ ports.Metrics = (*Prometheus)(nil)

// NewPrometheus registers the storefront collectors plus the Go runtime and
// process collectors.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders placed, by payment method.",
		}, []string{"method"}),
		orderValue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_value_rupees_total",
			Help:      "Final amount of placed orders in rupees, by payment method.",
		}, []string{"method"}),
		paymentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_outcomes_total",
			Help:      "Payment state changes applied to orders.",
		}, []string{"provider", "outcome"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_webhooks_total",
			Help:      "Payment webhooks received, by provider and result.",
		}, []string{"provider", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
	p.registry.MustRegister(
		p.ordersPlaced,
		p.orderValue,
		p.paymentOutcomes,
		p.webhooks,
		p.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) OrderPlaced(method domain.PaymentMethod, amount float64) {
	p.ordersPlaced.WithLabelValues(string(method)).Inc()
	p.orderValue.WithLabelValues(string(method)).Add(amount)
}

func (p *Prometheus) PaymentOutcome(provider string, outcome domain.PaymentOutcome) {
	p.paymentOutcomes.WithLabelValues(provider, string(outcome)).Inc()
}

func (p *Prometheus) WebhookReceived(provider string, status domain.EventStatus) {
	p.webhooks.WithLabelValues(provider, string(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Middleware observes request latency labelled by chi route pattern, so
// path parameters do not explode label cardinality.
func (p *Prometheus) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		p.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
