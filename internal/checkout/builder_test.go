package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smehta-dev/storefront-backend/internal/cart"
	"github.com/smehta-dev/storefront-backend/pkg/config"
	"github.com/smehta-dev/storefront-backend/pkg/enums"
	pkgerrors "github.com/smehta-dev/storefront-backend/pkg/errors"
	"github.com/smehta-dev/storefront-backend/pkg/money"
	"github.com/smehta-dev/storefront-backend/pkg/types"
)

func fixedShipping(amount string) ShippingRule {
	return func(decimal.Decimal, types.ShippingAddress) decimal.Decimal {
		return money.MustFromString(amount)
	}
}

func fixedTax(amount string) TaxRule {
	return func(decimal.Decimal) decimal.Decimal {
		return money.MustFromString(amount)
	}
}

func readyState() cart.State {
	return cart.State{
		Items: []cart.LineItem{
			{
				ProductSnapshot: cart.ProductSnapshot{
					ProductID:    "p1",
					Name:         "Camera",
					Price:        money.MustFromString("19.99"),
					CountInStock: 5,
				},
				Quantity: 2,
			},
		},
		ShippingAddress: types.ShippingAddress{
			Address:    "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		PaymentMethod: enums.PaymentMethodPayPal,
	}
}

func TestBuildComputesExactTotals(t *testing.T) {
	draft, err := Build(readyState(), fixedShipping("5.00"), fixedTax("4.00"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !draft.ItemsPrice.Equal(money.MustFromString("39.98")) {
		t.Fatalf("expected items price 39.98, got %s", draft.ItemsPrice)
	}
	if !draft.TotalPrice.Equal(money.MustFromString("48.98")) {
		t.Fatalf("expected total 48.98, got %s", draft.TotalPrice)
	}
	if len(draft.OrderItems) != 1 || draft.OrderItems[0].Quantity != 2 {
		t.Fatalf("unexpected order items %+v", draft.OrderItems)
	}
}

func TestBuildEmptyCartFailsRegardlessOfOtherState(t *testing.T) {
	state := readyState()
	state.Items = nil

	_, err := Build(state, fixedShipping("5.00"), fixedTax("4.00"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePrecondition {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if typed.Reason() != pkgerrors.ReasonEmptyCart {
		t.Fatalf("expected empty_cart reason, got %q", typed.Reason())
	}
}

func TestBuildMissingAddress(t *testing.T) {
	state := readyState()
	state.ShippingAddress.PostalCode = ""

	_, err := Build(state, fixedShipping("5.00"), fixedTax("4.00"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Reason() != pkgerrors.ReasonMissingShippingAddr {
		t.Fatalf("expected missing_shipping_address, got %v", err)
	}
}

func TestBuildMissingPaymentMethod(t *testing.T) {
	state := readyState()
	state.PaymentMethod = ""

	_, err := Build(state, fixedShipping("5.00"), fixedTax("4.00"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Reason() != pkgerrors.ReasonMissingPaymentMethod {
		t.Fatalf("expected missing_payment_method, got %v", err)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	state := readyState()
	draft, err := Build(state, fixedShipping("5.00"), fixedTax("4.00"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	draft.OrderItems[0].Quantity = 99
	if state.Items[0].Quantity != 2 {
		t.Fatal("build must snapshot items, not alias them")
	}
}

func TestThresholdShippingRule(t *testing.T) {
	rule := ThresholdShippingRule(money.MustFromString("100"), money.MustFromString("10"))
	addr := types.ShippingAddress{}

	if got := rule(money.MustFromString("100.00"), addr); !got.Equal(money.MustFromString("10")) {
		t.Fatalf("subtotal at threshold should pay flat rate, got %s", got)
	}
	if got := rule(money.MustFromString("100.01"), addr); !got.IsZero() {
		t.Fatalf("subtotal above threshold should ship free, got %s", got)
	}
}

func TestProportionalTaxRuleRoundsInBuild(t *testing.T) {
	state := readyState() // items 39.98
	rules := Rules{
		Shipping: ThresholdShippingRule(money.MustFromString("100"), money.MustFromString("10")),
		Tax:      ProportionalTaxRule(money.MustFromString("0.15")),
	}

	draft, err := Build(state, rules.Shipping, rules.Tax)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// 39.98 * 0.15 = 5.997 → 6.00 after the single rounding step.
	if !draft.TaxPrice.Equal(money.MustFromString("6.00")) {
		t.Fatalf("expected tax 6.00, got %s", draft.TaxPrice)
	}
	if !draft.TotalPrice.Equal(money.MustFromString("55.98")) {
		t.Fatalf("expected total 55.98, got %s", draft.TotalPrice)
	}
}

func stubPricingConfig(freeOver, flat, rate string) config.PricingConfig {
	return config.PricingConfig{
		FreeShippingOver: freeOver,
		FlatShipping:     flat,
		TaxRate:          rate,
	}
}

func TestRulesFromConfig(t *testing.T) {
	rules, err := RulesFromConfig(stubPricingConfig("100", "10", "0.15"))
	if err != nil {
		t.Fatalf("rules from config: %v", err)
	}
	if rules.Shipping == nil || rules.Tax == nil {
		t.Fatal("expected both rules built")
	}

	if _, err := RulesFromConfig(stubPricingConfig("abc", "10", "0.15")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := RulesFromConfig(stubPricingConfig("100", "10", "-0.15")); err == nil {
		t.Fatal("expected negative rate rejection")
	}
}
