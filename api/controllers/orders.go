package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smehta-dev/storefront-backend/api/middleware"
	"github.com/smehta-dev/storefront-backend/api/responses"
	"github.com/smehta-dev/storefront-backend/api/validators"
	"github.com/smehta-dev/storefront-backend/internal/orders"
	pkgerrors "github.com/smehta-dev/storefront-backend/pkg/errors"
	"github.com/smehta-dev/storefront-backend/pkg/gateway"
	"github.com/smehta-dev/storefront-backend/pkg/logger"
)

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// OrderPreview prices the cart as it stands without submitting anything.
func OrderPreview(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}

		draft, err := svc.Preview(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, draft)
	}
}

// OrderPlace submits the session's cart upstream. The cart keeps its shipping
// address and payment method after a successful submission so the shopper can
// reorder without retyping them.
func OrderPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}

		order, err := svc.Place(r.Context(), sessionID, bearerToken(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderGet proxies a single order lookup upstream.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")
		if strings.TrimSpace(orderID) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing order id"))
			return
		}

		order, err := svc.Get(r.Context(), bearerToken(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type payOrderRequest struct {
	ID     string `json:"id" validate:"required"`
	Status string `json:"status" validate:"required"`
	Email  string `json:"email_address"`
}

// OrderPay records a payment provider result against an order.
func OrderPay(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")
		if strings.TrimSpace(orderID) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing order id"))
			return
		}

		var payload payOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := gateway.PaymentResult{
			ID:     payload.ID,
			Status: payload.Status,
			Email:  payload.Email,
		}
		order, err := svc.Pay(r.Context(), bearerToken(r), orderID, result)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
