package orders

import (
	"context"
	"fmt"

	"github.com/smehta-dev/storefront-backend/internal/cart"
	"github.com/smehta-dev/storefront-backend/internal/checkout"
	"github.com/smehta-dev/storefront-backend/pkg/gateway"
	"github.com/smehta-dev/storefront-backend/pkg/logger"
	"github.com/smehta-dev/storefront-backend/pkg/metrics"
)

type orderAPI interface {
	CreateOrder(ctx context.Context, token string, payload gateway.OrderPayload) (*gateway.Order, error)
	GetOrder(ctx context.Context, token, orderID string) (*gateway.Order, error)
	PayOrder(ctx context.Context, token, orderID string, result gateway.PaymentResult) (*gateway.Order, error)
}

type cartProvider interface {
	Store(ctx context.Context, sessionID string) *cart.Store
}

// Service turns a session's cart into a submitted order.
type Service interface {
	Preview(ctx context.Context, sessionID string) (*checkout.Draft, error)
	Place(ctx context.Context, sessionID, token string) (*gateway.Order, error)
	Get(ctx context.Context, token, orderID string) (*gateway.Order, error)
	Pay(ctx context.Context, token, orderID string, result gateway.PaymentResult) (*gateway.Order, error)
}

type service struct {
	api     orderAPI
	carts   cartProvider
	rules   checkout.Rules
	logg    *logger.Logger
	metrics *metrics.HTTPMetrics
}

// ServiceParams wires the order service dependencies.
type ServiceParams struct {
	API     orderAPI
	Carts   cartProvider
	Rules   checkout.Rules
	Logger  *logger.Logger
	Metrics *metrics.HTTPMetrics
}

// NewService builds the order placement service.
func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, fmt.Errorf("commerce api client required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart registry required")
	}
	if params.Rules.Shipping == nil || params.Rules.Tax == nil {
		return nil, fmt.Errorf("pricing rules required")
	}
	return &service{
		api:     params.API,
		carts:   params.Carts,
		rules:   params.Rules,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Preview prices the session's cart without submitting anything.
func (s *service) Preview(ctx context.Context, sessionID string) (*checkout.Draft, error) {
	state := s.carts.Store(ctx, sessionID).Snapshot()
	return checkout.Build(state, s.rules.Shipping, s.rules.Tax)
}

// Place builds a draft from the session's cart and submits it upstream. On
// success the cart items are cleared; on upstream failure the cart is left
// untouched so the shopper can retry.
func (s *service) Place(ctx context.Context, sessionID, token string) (*gateway.Order, error) {
	store := s.carts.Store(ctx, sessionID)

	draft, err := checkout.Build(store.Snapshot(), s.rules.Shipping, s.rules.Tax)
	if err != nil {
		return nil, err
	}

	order, err := s.api.CreateOrder(ctx, token, draftToPayload(draft))
	if err != nil {
		return nil, err
	}

	store.Clear(ctx)
	s.metrics.IncOrderPlaced()

	if s.logg != nil {
		octx := s.logg.WithSessionID(ctx, sessionID)
		octx = s.logg.WithOrderID(octx, order.ID)
		s.logg.Info(octx, "order.placed")
	}
	return order, nil
}

// Get fetches a persisted order from the commerce API.
func (s *service) Get(ctx context.Context, token, orderID string) (*gateway.Order, error) {
	return s.api.GetOrder(ctx, token, orderID)
}

// Pay forwards the provider's capture result so the order is marked paid.
func (s *service) Pay(ctx context.Context, token, orderID string, result gateway.PaymentResult) (*gateway.Order, error) {
	return s.api.PayOrder(ctx, token, orderID, result)
}

func draftToPayload(draft *checkout.Draft) gateway.OrderPayload {
	items := make([]gateway.OrderItem, 0, len(draft.OrderItems))
	for _, item := range draft.OrderItems {
		items = append(items, gateway.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Brand:     item.Brand,
			Price:     item.Price,
			Qty:       item.Quantity,
		})
	}
	return gateway.OrderPayload{
		OrderItems:      items,
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   draft.PaymentMethod,
		ItemsPrice:      draft.ItemsPrice,
		ShippingPrice:   draft.ShippingPrice,
		TaxPrice:        draft.TaxPrice,
		TotalPrice:      draft.TotalPrice,
	}
}
