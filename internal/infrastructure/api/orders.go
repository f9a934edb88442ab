package api

import (
	"errors"
	"io"
	"net/http"

	"fishy-friend-storefront/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.ListForCustomer(r.Context(), domain.CustomerFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Orders.GetForCustomer(r.Context(), domain.CustomerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Orders.Cancel(r.Context(), domain.CustomerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *handler) submitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	review, err := h.svc.Reviews.Submit(r.Context(), domain.CustomerFromContext(r.Context()), chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

type startPaymentRequest struct {
	Provider string `json:"provider"`
}

func (h *handler) startPayment(w http.ResponseWriter, r *http.Request) {
	var req startPaymentRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	checkout, err := h.svc.Payments.StartPayment(r.Context(), domain.CustomerFromContext(r.Context()), chi.URLParam(r, "id"), req.Provider)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, checkout)
}

func (h *handler) upiInstructions(w http.ResponseWriter, r *http.Request) {
	ins, err := h.svc.Payments.UPIInstructions(r.Context(), domain.CustomerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

type upiConfirmRequest struct {
	TransactionID string `json:"upi_transaction_id"`
}

func (h *handler) confirmUPI(w http.ResponseWriter, r *http.Request) {
	var req upiConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	result, err := h.svc.Payments.ConfirmUPI(r.Context(), domain.CustomerFromContext(r.Context()), chi.URLParam(r, "id"), req.TransactionID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	result, err := h.svc.Payments.VerifyPayment(r.Context(), domain.CustomerFromContext(r.Context()), chi.URLParam(r, "provider"), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// paymentWebhook answers 2xx only when the event was applied or is known to
// be safe to drop, so that providers redeliver everything else.
func (h *handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error().Err(err).Str("provider", provider).Msg("Failed to read webhook payload")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}
	defer r.Body.Close()

	result, err := h.svc.Payments.HandleWebhook(r.Context(), provider, payload, r.Header)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSignatureInvalid):
			h.logger.Warn().Str("provider", provider).Msg("Webhook signature verification failed")
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn().Str("provider", provider).Msg("Webhook for unknown order")
		}
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
