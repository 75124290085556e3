package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/smehta-dev/storefront-backend/api/middleware"
	cartsvc "github.com/smehta-dev/storefront-backend/internal/cart"
	pkgerrors "github.com/smehta-dev/storefront-backend/pkg/errors"
	"github.com/smehta-dev/storefront-backend/pkg/gateway"
	"github.com/smehta-dev/storefront-backend/pkg/logger"
	"github.com/smehta-dev/storefront-backend/pkg/money"
)

var errNotFoundStub = pkgerrors.New(pkgerrors.CodeNotFound, "product not found")

type stubCatalog struct {
	products map[string]gateway.Product
	err      error
}

func (s *stubCatalog) GetProduct(_ context.Context, productID string) (*gateway.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	product, ok := s.products[productID]
	if !ok {
		return nil, errNotFoundStub
	}
	return &product, nil
}

func (s *stubCatalog) ListProducts(_ context.Context, _ string) ([]gateway.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]gateway.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func testRegistry(t *testing.T) *cartsvc.Registry {
	t.Helper()
	registry, err := cartsvc.NewRegistry(cartsvc.NewMemoryPersister(), testLogger())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return registry
}

func testCatalog() *stubCatalog {
	return &stubCatalog{products: map[string]gateway.Product{
		"p1": {ID: "p1", Name: "Airpods", Brand: "Apple", Price: money.MustFromString("89.99"), CountInStock: 10},
		"p2": {ID: "p2", Name: "Camera", Brand: "Cannon", Price: money.MustFromString("399.99"), CountInStock: 3},
	}}
}

func sessionRequest(method, target, sessionID string, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode cart response: %v", err)
	}
	return envelope.Data
}

func TestCartAddItemSetsQuantity(t *testing.T) {
	registry := testRegistry(t)
	logg := testLogger()
	handler := CartAddItem(registry, testCatalog(), logg)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart", "s1", `{"product_id":"p1","quantity":2}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", rec.Code, rec.Body.String())
	}

	// Same product again replaces the quantity instead of accumulating.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart", "s1", `{"product_id":"p1","quantity":5}`))
	cart := decodeCart(t, rec)
	if cart.TotalQuantity != 5 {
		t.Fatalf("expected quantity 5 got %d", cart.TotalQuantity)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected one line item got %d", len(cart.Items))
	}
}

func TestCartAddItemClampsToStock(t *testing.T) {
	registry := testRegistry(t)
	handler := CartAddItem(registry, testCatalog(), testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart", "s1", `{"product_id":"p2","quantity":99}`))
	cart := decodeCart(t, rec)
	if cart.TotalQuantity != 3 {
		t.Fatalf("expected quantity clamped to 3, got %d", cart.TotalQuantity)
	}
}

func TestCartAddItemRejectsMissingProduct(t *testing.T) {
	registry := testRegistry(t)
	handler := CartAddItem(registry, testCatalog(), testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart", "s1", `{"product_id":"ghost","quantity":1}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}

	// The failed add must leave the cart untouched.
	getRec := httptest.NewRecorder()
	CartGet(registry, testLogger()).ServeHTTP(getRec, sessionRequest(http.MethodGet, "/api/v1/cart", "s1", ""))
	if cart := decodeCart(t, getRec); len(cart.Items) != 0 {
		t.Fatalf("expected empty cart got %d items", len(cart.Items))
	}
}

func TestCartAddItemRejectsBadBody(t *testing.T) {
	registry := testRegistry(t)
	handler := CartAddItem(registry, testCatalog(), testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart", "s1", `{"product_id":"p1","quantity":0}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", rec.Code)
	}
}

func TestCartRemoveItem(t *testing.T) {
	registry := testRegistry(t)
	add := CartAddItem(registry, testCatalog(), testLogger())

	rec := httptest.NewRecorder()
	add.ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart", "s1", `{"product_id":"p1","quantity":2}`))

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productId", "p1")
	req := sessionRequest(http.MethodDelete, "/api/v1/cart/items/p1", "s1", "")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rec = httptest.NewRecorder()
	CartRemoveItem(registry, testLogger()).ServeHTTP(rec, req)
	if cart := decodeCart(t, rec); len(cart.Items) != 0 {
		t.Fatalf("expected empty cart got %d items", len(cart.Items))
	}
}

func TestCartSetShippingRejectsPartialAddress(t *testing.T) {
	registry := testRegistry(t)
	handler := CartSetShipping(registry, testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(http.MethodPut, "/api/v1/cart/shipping", "s1", `{"address":"1 Main St","city":"Boston"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartSetPaymentRejectsUnknownMethod(t *testing.T) {
	registry := testRegistry(t)
	handler := CartSetPayment(registry, testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(http.MethodPut, "/api/v1/cart/payment", "s1", `{"payment_method":"bitcoin"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(http.MethodPut, "/api/v1/cart/payment", "s1", `{"payment_method":"paypal"}`))
	if cart := decodeCart(t, rec); cart.PaymentMethod != "paypal" {
		t.Fatalf("expected paypal got %q", cart.PaymentMethod)
	}
}

func TestCartClearKeepsCheckoutDetails(t *testing.T) {
	registry := testRegistry(t)
	logg := testLogger()

	rec := httptest.NewRecorder()
	CartAddItem(registry, testCatalog(), logg).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart", "s1", `{"product_id":"p1","quantity":1}`))
	rec = httptest.NewRecorder()
	CartSetShipping(registry, logg).ServeHTTP(rec, sessionRequest(http.MethodPut, "/api/v1/cart/shipping", "s1", `{"address":"1 Main St","city":"Boston","postal_code":"02101","country":"USA"}`))
	rec = httptest.NewRecorder()
	CartSetPayment(registry, logg).ServeHTTP(rec, sessionRequest(http.MethodPut, "/api/v1/cart/payment", "s1", `{"payment_method":"stripe"}`))

	rec = httptest.NewRecorder()
	CartClear(registry, logg).ServeHTTP(rec, sessionRequest(http.MethodDelete, "/api/v1/cart", "s1", ""))
	cart := decodeCart(t, rec)
	if len(cart.Items) != 0 {
		t.Fatalf("expected no items got %d", len(cart.Items))
	}
	if cart.PaymentMethod != "stripe" || cart.ShippingAddress.City != "Boston" {
		t.Fatalf("expected checkout details to survive clear, got %+v", cart)
	}

	rec = httptest.NewRecorder()
	CartClear(registry, logg).ServeHTTP(rec, sessionRequest(http.MethodDelete, "/api/v1/cart?full=true", "s1", ""))
	cart = decodeCart(t, rec)
	if cart.PaymentMethod != "" || !cart.ShippingAddress.IsZero() {
		t.Fatalf("expected full reset to wipe checkout details, got %+v", cart)
	}
	if got := registry.Len(); got != 0 {
		t.Fatalf("expected full reset to release the session store, got %d resident", got)
	}
}

func TestCartGetRequiresSession(t *testing.T) {
	registry := testRegistry(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	CartGet(registry, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
