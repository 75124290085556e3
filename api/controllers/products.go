package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smehta-dev/storefront-backend/api/responses"
	pkgerrors "github.com/smehta-dev/storefront-backend/pkg/errors"
	"github.com/smehta-dev/storefront-backend/pkg/gateway"
	"github.com/smehta-dev/storefront-backend/pkg/logger"
)

type catalogAPI interface {
	ListProducts(ctx context.Context, keyword string) ([]gateway.Product, error)
	GetProduct(ctx context.Context, productID string) (*gateway.Product, error)
}

// ProductsList proxies the catalog listing, with optional keyword search.
func ProductsList(catalog catalogAPI, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := catalog.ListProducts(r.Context(), r.URL.Query().Get("keyword"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if products == nil {
			products = []gateway.Product{}
		}
		responses.WriteSuccess(w, products)
	}
}

// ProductGet proxies a single product lookup.
func ProductGet(catalog catalogAPI, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")
		if strings.TrimSpace(productID) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing product id"))
			return
		}

		product, err := catalog.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
