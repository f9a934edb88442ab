package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"fishy-friend-storefront/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (h *handler) staffRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)

	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Put("/categories/{id}", h.updateCategory)
	r.Delete("/categories/{id}", h.deleteCategory)

	r.Get("/breeds", h.listBreeds)
	r.Post("/breeds", h.createBreed)
	r.Delete("/breeds/{id}", h.deleteBreed)

	r.Get("/products", h.staffProducts)
	r.Get("/products/low-stock", h.lowStock)
	r.Post("/products", h.createProduct)
	r.Get("/products/{id}", h.staffProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Post("/products/{id}/featured", h.toggleFeatured)
	r.Post("/products/sync", h.syncCatalog)

	r.Get("/combos", h.staffCombos)
	r.Post("/combos", h.createCombo)
	r.Put("/combos/{id}", h.updateCombo)
	r.Delete("/combos/{id}", h.deleteCombo)

	r.Get("/offers", h.staffOffers)
	r.Post("/offers", h.createOffer)
	r.Put("/offers/{id}", h.updateOffer)
	r.Delete("/offers/{id}", h.deleteOffer)

	r.Get("/coupons", h.listCoupons)
	r.Post("/coupons", h.createCoupon)
	r.Get("/coupons/{id}", h.getCoupon)
	r.Put("/coupons/{id}", h.updateCoupon)
	r.Delete("/coupons/{id}", h.deleteCoupon)

	r.Get("/shipping", h.shippingSettings)
	r.Put("/shipping", h.updateShippingSettings)

	r.Get("/orders", h.staffOrders)
	r.Get("/orders/export.csv", h.exportOrders)
	r.Get("/orders/{id}", h.staffOrder)
	r.Post("/orders/{id}/status", h.updateOrderStatus)
	r.Post("/orders/{id}/refund", h.refundOrder)

	r.Get("/reviews", h.allReviews)
	r.Post("/reviews/{id}/approve", h.approveReview)
	r.Delete("/reviews/{id}", h.rejectReview)

	r.Get("/customers", h.listCustomers)
	r.Post("/customers/{id}/favorite", h.toggleFavorite)
	r.Post("/customers/{id}/block", h.blockCustomer(true))
	r.Post("/customers/{id}/unblock", h.blockCustomer(false))

	r.Get("/team", h.listStaff)
	r.Post("/team/{customerID}", h.addStaff)
	r.Delete("/team/{customerID}", h.removeStaff)

	r.Get("/alerts", h.stockAlerts)
	r.Post("/alerts/read-all", h.markAllAlertsRead)
	r.Post("/alerts/{id}/read", h.markAlertRead)

	r.Get("/blog", h.staffPosts)
	r.Post("/blog", h.createPost)
	r.Get("/blog/{id}", h.staffPost)
	r.Put("/blog/{id}", h.updatePost)
	r.Delete("/blog/{id}", h.deletePost)
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.Orders.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// Categories and breeds

func (h *handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := decodeJSON(w, r, &category); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.svc.Catalog.CreateCategory(r.Context(), &category)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := decodeJSON(w, r, &category); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	category.ID = chi.URLParam(r, "id")
	updated, err := h.svc.Catalog.UpdateCategory(r.Context(), &category)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) createBreed(w http.ResponseWriter, r *http.Request) {
	var breed domain.Breed
	if err := decodeJSON(w, r, &breed); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.svc.Catalog.CreateBreed(r.Context(), &breed)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) deleteBreed(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteBreed(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Products

func (h *handler) staffProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.svc.Catalog.AllProducts(r.Context(), domain.ProductKind(q.Get("kind")), q.Get("q"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *handler) staffProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"), true)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.LowStock(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := decodeJSON(w, r, &product); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.svc.Catalog.CreateProduct(r.Context(), &product)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := decodeJSON(w, r, &product); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	product.ID = chi.URLParam(r, "id")
	updated, err := h.svc.Catalog.UpdateProduct(r.Context(), &product)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) toggleFeatured(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.Catalog.ToggleFeatured(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *handler) syncCatalog(w http.ResponseWriter, r *http.Request) {
	if h.svc.Sync == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "shopify channel is not configured"})
		return
	}
	report, err := h.svc.Sync.SyncCatalog(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Combos and offers

func (h *handler) staffCombos(w http.ResponseWriter, r *http.Request) {
	combos, err := h.svc.Catalog.AllCombos(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, combos)
}

func (h *handler) createCombo(w http.ResponseWriter, r *http.Request) {
	var combo domain.Combo
	if err := decodeJSON(w, r, &combo); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.svc.Catalog.CreateCombo(r.Context(), &combo)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateCombo(w http.ResponseWriter, r *http.Request) {
	var combo domain.Combo
	if err := decodeJSON(w, r, &combo); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	combo.ID = chi.URLParam(r, "id")
	updated, err := h.svc.Catalog.UpdateCombo(r.Context(), &combo)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteCombo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteCombo(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) staffOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.svc.Catalog.AllOffers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *handler) createOffer(w http.ResponseWriter, r *http.Request) {
	var offer domain.LimitedOffer
	if err := decodeJSON(w, r, &offer); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.svc.Catalog.CreateOffer(r.Context(), &offer)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateOffer(w http.ResponseWriter, r *http.Request) {
	var offer domain.LimitedOffer
	if err := decodeJSON(w, r, &offer); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	offer.ID = chi.URLParam(r, "id")
	updated, err := h.svc.Catalog.UpdateOffer(r.Context(), &offer)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteOffer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Coupons

func (h *handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.svc.Coupons.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

func (h *handler) getCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.svc.Coupons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, coupon)
}

func (h *handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var coupon domain.Coupon
	if err := decodeJSON(w, r, &coupon); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.svc.Coupons.Create(r.Context(), &coupon)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var coupon domain.Coupon
	if err := decodeJSON(w, r, &coupon); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	coupon.ID = chi.URLParam(r, "id")
	updated, err := h.svc.Coupons.Update(r.Context(), &coupon)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Shipping

func (h *handler) shippingSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Shipping.Settings(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *handler) updateShippingSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.ShippingSettings
	if err := decodeJSON(w, r, &settings); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	updated, err := h.svc.Shipping.UpdateSettings(r.Context(), &settings)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Orders

func orderFilter(r *http.Request) domain.OrderFilter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return domain.OrderFilter{
		Status:        domain.OrderStatus(q.Get("status")),
		PaymentStatus: domain.PaymentStatus(q.Get("payment_status")),
		Search:        q.Get("q"),
		Limit:         limit,
	}
}

func (h *handler) staffOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.List(r.Context(), orderFilter(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type staffOrderView struct {
	*domain.Order
	PaymentEvents []*domain.PaymentEventRecord `json:"payment_events"`
}

func (h *handler) staffOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	events, err := h.svc.Payments.PaymentEvents(r.Context(), order.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, staffOrderView{Order: order, PaymentEvents: events})
}

func (h *handler) exportOrders(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.Orders.ExportCSV(r.Context(), orderFilter(r), &buf); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	filename := "orders_" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	order, err := h.svc.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *handler) refundOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Payments.RefundOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Reviews and customers

func (h *handler) allReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.Reviews.All(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *handler) approveReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.svc.Reviews.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *handler) rejectReview(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reviews.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.Customers.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *handler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	customer, err := h.svc.Customers.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *handler) blockCustomer(blocked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, err := h.svc.Customers.SetBlocked(r.Context(), chi.URLParam(r, "id"), blocked)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, customer)
	}
}
