package api

import (
	"net/http"
	"strconv"
	"strings"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	featured, _ := strconv.ParseBool(q.Get("featured"))
	products, err := h.svc.Catalog.ListProducts(r.Context(), application.ListingFilter{
		Kind:       domain.ProductKind(q.Get("kind")),
		CategoryID: q.Get("category"),
		BreedID:    q.Get("breed"),
		Search:     q.Get("q"),
		Featured:   featured,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Catalog.ListCategories(r.Context(), domain.CategoryType(r.URL.Query().Get("type")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *handler) listBreeds(w http.ResponseWriter, r *http.Request) {
	breeds, err := h.svc.Catalog.ListBreeds(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, breeds)
}

func (h *handler) listCombos(w http.ResponseWriter, r *http.Request) {
	combos, err := h.svc.Catalog.VisibleCombos(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, combos)
}

func (h *handler) listOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.svc.Catalog.CurrentOffers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *handler) publicReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.Reviews.Public(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *handler) shippingQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := strings.TrimSpace(q.Get("state"))
	if state == "" {
		writeError(w, r, h.logger, domain.ErrShippingStateRequired)
		return
	}
	weight := decimal.Zero
	if raw := q.Get("weight"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			writeError(w, r, h.logger, domain.NewValidationError("weight", "Weight must be a non-negative number."))
			return
		}
		weight = parsed
	}
	quote, err := h.svc.Shipping.Quote(r.Context(), state, weight)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type profileRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (p profileRequest) customer(id string) *domain.Customer {
	return &domain.Customer{
		ID:      id,
		Email:   strings.TrimSpace(p.Email),
		Name:    strings.TrimSpace(p.Name),
		Phone:   strings.TrimSpace(p.Phone),
		Address: strings.TrimSpace(p.Address),
	}
}

func (h *handler) registerCustomer(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	customer, err := h.svc.Customers.Register(r.Context(), req.customer(""))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.CustomerFromContext(r.Context()))
}

func (h *handler) updateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	customer, err := h.svc.Customers.Register(r.Context(), req.customer(domain.CustomerFromContext(r.Context()).ID))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	customer := domain.CustomerFromContext(r.Context())
	_, priced, err := h.svc.Cart.Priced(r.Context(), customer.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, priced)
}

func (h *handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var in application.AddItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	priced, err := h.svc.Cart.AddItem(r.Context(), domain.CustomerFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, priced)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	priced, err := h.svc.Cart.UpdateQuantity(r.Context(), domain.CustomerFromContext(r.Context()), chi.URLParam(r, "lineID"), req.Quantity)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, priced)
}

func (h *handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	priced, err := h.svc.Cart.RemoveItem(r.Context(), domain.CustomerFromContext(r.Context()), chi.URLParam(r, "lineID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, priced)
}

func (h *handler) checkoutSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Checkout.Summary(r.Context(), domain.CustomerFromContext(r.Context()), r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type couponRequest struct {
	Code string `json:"code"`
}

func (h *handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	result, err := h.svc.Checkout.ApplyCoupon(r.Context(), domain.CustomerFromContext(r.Context()), req.Code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	subtotal, err := h.svc.Checkout.RemoveCoupon(r.Context(), domain.CustomerFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Coupon removed",
		"final_total": subtotal,
	})
}

func (h *handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in application.PlaceOrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	order, err := h.svc.Checkout.PlaceOrder(r.Context(), domain.CustomerFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}
