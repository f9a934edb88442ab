package api

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// CustomerHeader identifies the calling customer on storefront routes.
const CustomerHeader = "X-Customer-ID"

// StaffActorHeader optionally names the staff member behind a staff token.
const StaffActorHeader = "X-Staff-Name"

// securityHeaders sets the response headers every route carries.
func securityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			next.ServeHTTP(w, r)
		})
	}
}

// inputValidation refuses request bodies that are not JSON.
func inputValidation(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if r.ContentLength == 0 {
					break
				}
				mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil || mediaType != "application/json" {
					logger.Warn().
						Str("path", r.URL.Path).
						Str("contentType", r.Header.Get("Content-Type")).
						Msg("Rejected non-JSON request body")
					writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: "content type must be application/json"})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// auditLogging records every state-changing request with its outcome.
func auditLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodOptions || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("requestId", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("customerId", r.Header.Get(CustomerHeader)).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("Audit")
		})
	}
}

// customerAuth resolves X-Customer-ID to a customer. Unknown customers are
// unauthorised and blocked customers are refused.
func customerAuth(customers *application.CustomerService, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(CustomerHeader))
			if id == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: CustomerHeader + " header is required"})
				return
			}
			customer, err := customers.Get(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unknown customer"})
				return
			}
			if err != nil {
				writeError(w, r, logger, err)
				return
			}
			if customer.Blocked {
				logger.Warn().Str("customerId", id).Str("path", r.URL.Path).Msg("Blocked customer refused")
				writeJSON(w, http.StatusForbidden, errorResponse{Error: "account is blocked"})
				return
			}
			next.ServeHTTP(w, r.WithContext(domain.WithCustomer(r.Context(), customer)))
		})
	}
}

// staffAuth checks the bearer token against a bcrypt hash. With no hash
// configured every staff request is refused.
func staffAuth(tokenHash string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" || tokenHash == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "staff token required"})
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
				logger.Warn().Str("path", r.URL.Path).Str("ip", r.RemoteAddr).Msg("Invalid staff token")
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid staff token"})
				return
			}
			actor := strings.TrimSpace(r.Header.Get(StaffActorHeader))
			if actor == "" {
				actor = "staff"
			}
			next.ServeHTTP(w, r.WithContext(domain.WithStaff(r.Context(), actor)))
		})
	}
}
