package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fishy-friend-storefront/internal/domain"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds JSON request bodies and webhook payloads.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("", "Invalid request body: %v", err)
	}
	return nil
}

// errorStatus maps service errors to an HTTP status and a message that is
// safe to return. Anything unrecognised is a 500 with a generic message.
func errorStatus(err error) (int, errorResponse) {
	var validation *domain.ValidationError
	var coupon *domain.CouponError
	var unserviceable *domain.UnserviceableError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorResponse{Error: validation.Message, Field: validation.Field}
	case errors.As(err, &coupon):
		return http.StatusBadRequest, errorResponse{Error: coupon.Message, Reason: string(coupon.Reason)}
	case errors.As(err, &unserviceable):
		return http.StatusBadRequest, errorResponse{Error: unserviceable.Error()}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrSignatureInvalid):
		return http.StatusBadRequest, errorResponse{Error: domain.ErrSignatureInvalid.Error()}
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrShippingStateRequired):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrOrderCancelled),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrCouponExhausted),
		errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	status, body := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
	}
	writeJSON(w, status, body)
}
