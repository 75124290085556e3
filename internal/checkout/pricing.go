package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smehta-dev/storefront-backend/pkg/config"
	"github.com/smehta-dev/storefront-backend/pkg/money"
	"github.com/smehta-dev/storefront-backend/pkg/types"
)

// Rules bundles the pricing strategies one deployment runs with.
type Rules struct {
	Shipping ShippingRule
	Tax      TaxRule
}

// ThresholdShippingRule ships free above the threshold, flat otherwise.
func ThresholdShippingRule(freeOver, flat decimal.Decimal) ShippingRule {
	return func(itemsPrice decimal.Decimal, _ types.ShippingAddress) decimal.Decimal {
		if itemsPrice.GreaterThan(freeOver) {
			return decimal.Zero
		}
		return flat
	}
}

// ProportionalTaxRule taxes the subtotal at a fixed rate.
func ProportionalTaxRule(rate decimal.Decimal) TaxRule {
	return func(itemsPrice decimal.Decimal) decimal.Decimal {
		return itemsPrice.Mul(rate)
	}
}

// RulesFromConfig parses the deployment's pricing policy.
func RulesFromConfig(cfg config.PricingConfig) (Rules, error) {
	freeOver, err := money.FromString(cfg.FreeShippingOver)
	if err != nil {
		return Rules{}, fmt.Errorf("parse free shipping threshold: %w", err)
	}
	flat, err := money.FromString(cfg.FlatShipping)
	if err != nil {
		return Rules{}, fmt.Errorf("parse flat shipping price: %w", err)
	}
	rate, err := money.FromString(cfg.TaxRate)
	if err != nil {
		return Rules{}, fmt.Errorf("parse tax rate: %w", err)
	}
	if rate.IsNegative() || flat.IsNegative() || freeOver.IsNegative() {
		return Rules{}, fmt.Errorf("pricing values cannot be negative")
	}
	return Rules{
		Shipping: ThresholdShippingRule(freeOver, flat),
		Tax:      ProportionalTaxRule(rate),
	}, nil
}
