package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smehta-dev/storefront-backend/pkg/enums"
	"github.com/smehta-dev/storefront-backend/pkg/money"
	"github.com/smehta-dev/storefront-backend/pkg/types"
)

// ProductSnapshot is the catalog data captured when a product enters the cart.
type ProductSnapshot struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"count_in_stock"`
}

// LineItem is one product plus the quantity the shopper intends to purchase.
type LineItem struct {
	ProductSnapshot
	Quantity int `json:"quantity"`
}

// State holds everything the shopper intends to buy and how they intend to
// ship and pay. Items keep insertion order; product IDs are unique.
type State struct {
	Items           []LineItem            `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method"`
}

// TotalQuantity sums quantities across all line items.
func (s State) TotalQuantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// ItemsPrice sums price*quantity across items and rounds once after the sum.
func (s State) ItemsPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(money.LineTotal(item.Price, item.Quantity))
	}
	return money.Round2(total)
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (s State) Clone() State {
	out := s
	out.Items = make([]LineItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}

// EncodeState serializes cart state for persistence.
func EncodeState(state State) ([]byte, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode cart state: %w", err)
	}
	return payload, nil
}

// DecodeState restores cart state from its persisted form.
func DecodeState(payload []byte) (State, error) {
	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return State{}, fmt.Errorf("decode cart state: %w", err)
	}
	if state.Items == nil {
		state.Items = []LineItem{}
	}
	return state, nil
}
