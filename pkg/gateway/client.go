package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smehta-dev/storefront-backend/pkg/config"
	"github.com/smehta-dev/storefront-backend/pkg/enums"
	pkgerrors "github.com/smehta-dev/storefront-backend/pkg/errors"
	"github.com/smehta-dev/storefront-backend/pkg/types"
)

const errorBodyReadLimit int64 = 1024

// Client talks to the remote commerce REST API that owns catalog, orders and
// users. Every call is request/response; failures map to upstream errors.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the commerce API client from configuration.
func NewClient(cfg config.GatewayConfig, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// OrderItem is one purchased line inside an order payload.
type OrderItem struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Brand     string          `json:"brand"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

// OrderPayload is the API-submittable order shape.
type OrderPayload struct {
	OrderItems      []OrderItem           `json:"orderItems"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal       `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal       `json:"shippingPrice"`
	TaxPrice        decimal.Decimal       `json:"taxPrice"`
	TotalPrice      decimal.Decimal       `json:"totalPrice"`
}

// Order is the persisted copy returned by the API.
type Order struct {
	ID              string                `json:"_id"`
	OrderItems      []OrderItem           `json:"orderItems"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal       `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal       `json:"shippingPrice"`
	TaxPrice        decimal.Decimal       `json:"taxPrice"`
	TotalPrice      decimal.Decimal       `json:"totalPrice"`
	IsPaid          bool                  `json:"isPaid"`
	IsDelivered     bool                  `json:"isDelivered"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	DeliveredAt     *time.Time            `json:"deliveredAt,omitempty"`
}

// PaymentResult is the opaque outcome handed back by the payment provider.
type PaymentResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Email  string `json:"email_address,omitempty"`
}

// Product is the catalog snapshot used to build cart line items.
type Product struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
}

// CreateOrder submits a fully priced order payload.
func (c *Client) CreateOrder(ctx context.Context, token string, payload OrderPayload) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", token, payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches a persisted order by ID.
func (c *Client) GetOrder(ctx context.Context, token, orderID string) (*Order, error) {
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var order Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(trimmed), token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PayOrder marks an order paid with the provider's capture result.
func (c *Client) PayOrder(ctx context.Context, token, orderID string, result PaymentResult) (*Order, error) {
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var order Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(trimmed)+"/pay", token, result, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListProducts fetches a catalog page, optionally filtered by keyword.
func (c *Client) ListProducts(ctx context.Context, keyword string) ([]Product, error) {
	path := "/api/products"
	if k := strings.TrimSpace(keyword); k != "" {
		path += "?keyword=" + url.QueryEscape(k)
	}
	var products []Product
	if err := c.do(ctx, http.MethodGet, path, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one catalog product by ID.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	trimmed := strings.TrimSpace(productID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var product Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(trimmed), "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Ping verifies the upstream API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/products?limit=1", "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dest any) error {
	if c == nil || c.httpClient == nil {
		return pkgerrors.New(pkgerrors.CodeUpstream, "commerce api client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode == http.StatusNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, "resource not found upstream")
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, "upstream rejected credentials")
		}
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, cause, "commerce api request failed")
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode response")
	}
	return nil
}
