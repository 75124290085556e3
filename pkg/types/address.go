package types

import "strings"

// ShippingAddress is the destination a shopper fills in during checkout.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Complete reports whether every field is populated.
func (a ShippingAddress) Complete() bool {
	return len(a.MissingFields()) == 0
}

// MissingFields lists the blank fields, in display order.
func (a ShippingAddress) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	return missing
}

// IsZero reports whether the address has never been set.
func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}
