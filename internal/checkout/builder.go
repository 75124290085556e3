package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/smehta-dev/storefront-backend/internal/cart"
	"github.com/smehta-dev/storefront-backend/pkg/enums"
	pkgerrors "github.com/smehta-dev/storefront-backend/pkg/errors"
	"github.com/smehta-dev/storefront-backend/pkg/money"
	"github.com/smehta-dev/storefront-backend/pkg/types"
)

// ShippingRule prices delivery for a cart subtotal and destination.
type ShippingRule func(itemsPrice decimal.Decimal, address types.ShippingAddress) decimal.Decimal

// TaxRule prices tax for a cart subtotal.
type TaxRule func(itemsPrice decimal.Decimal) decimal.Decimal

// Draft is the fully priced, not-yet-submitted representation of a cart.
type Draft struct {
	OrderItems      []cart.LineItem       `json:"order_items"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method"`
	ItemsPrice      decimal.Decimal       `json:"items_price"`
	ShippingPrice   decimal.Decimal       `json:"shipping_price"`
	TaxPrice        decimal.Decimal       `json:"tax_price"`
	TotalPrice      decimal.Decimal       `json:"total_price"`
}

// Build assembles a submittable order draft from cart state. It is pure: no
// I/O happens here, and the input state is never mutated. Precondition
// failures carry a machine-readable reason for inline display.
func Build(state cart.State, shippingRule ShippingRule, taxRule TaxRule) (*Draft, error) {
	if len(state.Items) == 0 {
		return nil, pkgerrors.Precondition(pkgerrors.ReasonEmptyCart, "cart has no items")
	}
	if !state.ShippingAddress.Complete() {
		return nil, pkgerrors.Precondition(pkgerrors.ReasonMissingShippingAddr, "shipping address is incomplete")
	}
	if !state.PaymentMethod.IsValid() {
		return nil, pkgerrors.Precondition(pkgerrors.ReasonMissingPaymentMethod, "payment method not selected")
	}
	if shippingRule == nil || taxRule == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pricing rules not configured")
	}

	itemsPrice := state.ItemsPrice()
	shippingPrice := money.Round2(shippingRule(itemsPrice, state.ShippingAddress))
	taxPrice := money.Round2(taxRule(itemsPrice))

	items := make([]cart.LineItem, len(state.Items))
	copy(items, state.Items)

	return &Draft{
		OrderItems:      items,
		ShippingAddress: state.ShippingAddress,
		PaymentMethod:   state.PaymentMethod,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shippingPrice,
		TaxPrice:        taxPrice,
		TotalPrice:      money.Round2(money.Sum(itemsPrice, shippingPrice, taxPrice)),
	}, nil
}
