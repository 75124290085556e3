package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/smehta-dev/storefront-backend/api/middleware"
	"github.com/smehta-dev/storefront-backend/api/responses"
	"github.com/smehta-dev/storefront-backend/api/validators"
	cartsvc "github.com/smehta-dev/storefront-backend/internal/cart"
	pkgerrors "github.com/smehta-dev/storefront-backend/pkg/errors"
	"github.com/smehta-dev/storefront-backend/pkg/gateway"
	"github.com/smehta-dev/storefront-backend/pkg/logger"
	"github.com/smehta-dev/storefront-backend/pkg/types"
)

// productCatalog is the slice of the gateway the cart handlers need.
type productCatalog interface {
	GetProduct(ctx context.Context, productID string) (*gateway.Product, error)
}

type cartResponse struct {
	Items           []cartsvc.LineItem    `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
	TotalQuantity   int                   `json:"total_quantity"`
	ItemsPrice      decimal.Decimal       `json:"items_price"`
}

func newCartResponse(state cartsvc.State) cartResponse {
	method := ""
	if state.PaymentMethod.IsValid() {
		method = state.PaymentMethod.String()
	}
	items := state.Items
	if items == nil {
		items = []cartsvc.LineItem{}
	}
	return cartResponse{
		Items:           items,
		ShippingAddress: state.ShippingAddress,
		PaymentMethod:   method,
		TotalQuantity:   state.TotalQuantity(),
		ItemsPrice:      state.ItemsPrice(),
	}
}

func sessionStore(r *http.Request, carts *cartsvc.Registry) (*cartsvc.Store, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	return carts.Store(r.Context(), sessionID), nil
}

// CartGet returns the session's current cart.
func CartGet(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CartAddItem fetches current catalog data for the product and sets the
// requested quantity on the cart line, capped at available stock.
func CartAddItem(carts *cartsvc.Registry, catalog productCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalog.GetProduct(r.Context(), strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot := cartsvc.ProductSnapshot{
			ProductID:    product.ID,
			Name:         product.Name,
			Image:        product.Image,
			Brand:        product.Brand,
			Price:        product.Price,
			CountInStock: product.CountInStock,
		}
		if err := store.AddItem(r.Context(), snapshot, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

// CartRemoveItem drops a line from the cart. Removing an absent product is a
// no-op and still returns the cart.
func CartRemoveItem(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		if strings.TrimSpace(productID) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing product id"))
			return
		}

		store.RemoveItem(r.Context(), productID)
		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

type shippingAddressRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CartSetShipping records the checkout destination on the cart.
func CartSetShipping(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload shippingAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		address := types.ShippingAddress{
			Address:    payload.Address,
			City:       payload.City,
			PostalCode: payload.PostalCode,
			Country:    payload.Country,
		}
		if err := store.SetShippingAddress(r.Context(), address); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

type paymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// CartSetPayment records the payment method on the cart.
func CartSetPayment(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.SetPaymentMethod(r.Context(), payload.PaymentMethod); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

// CartClear empties the cart's items. With ?full=true it also wipes the
// shipping address and payment method.
func CartClear(carts *cartsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if r.URL.Query().Get("full") == "true" {
			store.Reset(r.Context())
			carts.Evict(store.SessionID())
		} else {
			store.Clear(r.Context())
		}

		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}
