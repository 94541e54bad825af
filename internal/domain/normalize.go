package domain

import "strings"

// AddressInput accepts the loose address shapes produced by the storefront UI,
// where the same logical field historically travelled under several names.
type AddressInput struct {
	Zip        string `json:"zip"`
	ZipCode    string `json:"zipCode"`
	PostalCode string `json:"postalCode"`
	State      string `json:"state"`
	Provincia  string `json:"provincia"`
	Estado     string `json:"estado"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Normalize resolves the field aliases into the canonical Address. The postal
// code keeps digits only (whitespace and hyphens stripped); the state is
// uppercased for coverage matching.
func (in AddressInput) Normalize() Address {
	return Address{
		PostalCode: NormalizePostalCode(firstNonEmpty(in.Zip, in.ZipCode, in.PostalCode)),
		State:      strings.ToUpper(strings.TrimSpace(firstNonEmpty(in.State, in.Provincia, in.Estado))),
		City:       strings.TrimSpace(in.City),
		Country:    strings.ToUpper(strings.TrimSpace(in.Country)),
	}
}

// NormalizePostalCode strips whitespace and hyphens from a raw postal code.
func NormalizePostalCode(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r == '-' || r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ProductInput is the loose product shape accepted at the cart boundary.
type ProductInput struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Price           float64  `json:"price"`
	Weight          float64  `json:"weight"`
	ShippingRuleIDs []string `json:"shippingRuleIds"`
	// ShippingRuleID is the legacy single-rule field still present on old
	// catalog documents; it is folded into ShippingRuleIDs when the list is empty.
	ShippingRuleID string `json:"shippingRuleId"`
}

// CartItemInput accepts both cart line shapes: {product: {...}, quantity} and
// the flattened product-with-quantity object.
type CartItemInput struct {
	ProductInput
	Product  *ProductInput `json:"product"`
	Quantity int           `json:"quantity"`
}

// Normalize converts the loose line into a canonical CartItem. A missing or
// non-positive quantity defaults to one; negative or non-finite prices and
// weights are coerced to zero.
func (in CartItemInput) Normalize() CartItem {
	source := in.ProductInput
	if in.Product != nil {
		source = *in.Product
	}

	ruleIDs := trimNonEmpty(source.ShippingRuleIDs)
	if len(ruleIDs) == 0 {
		if legacy := strings.TrimSpace(source.ShippingRuleID); legacy != "" {
			ruleIDs = []string{legacy}
		}
	}

	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	return CartItem{
		Product: Product{
			ID:              strings.TrimSpace(source.ID),
			Name:            strings.TrimSpace(source.Name),
			Price:           sanitizeNumber(source.Price),
			Weight:          sanitizeNumber(source.Weight),
			ShippingRuleIDs: ruleIDs,
		},
		Quantity: quantity,
	}
}

// NormalizeCartItems converts every loose cart line, dropping entries without
// a product identifier.
func NormalizeCartItems(inputs []CartItemInput) []CartItem {
	items := make([]CartItem, 0, len(inputs))
	for _, input := range inputs {
		item := input.Normalize()
		if item.Product.ID == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// NormalizeZoneType maps a rule zone display name onto the canonical zone-type
// keys used by presentation grouping. English spellings fold into the Spanish
// canonical form.
func NormalizeZoneType(zone string) string {
	switch strings.ToLower(strings.TrimSpace(zone)) {
	case "local":
		return "local"
	case "nacional", "national":
		return "nacional"
	case "internacional", "international":
		return "internacional"
	case "local_national", "local y nacional":
		return "local_national"
	case "combined", "combinado":
		return "combined"
	default:
		return strings.ToLower(strings.TrimSpace(zone))
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
