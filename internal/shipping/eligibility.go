package shipping

import "github.com/cactilia/api/internal/domain"

// EligibleItem is a cart line together with the rules that can ship it to the
// destination.
type EligibleItem struct {
	Item            domain.CartItem
	ApplicableRules []domain.ShippingRule
}

// CartPartition splits a cart into shippable and unshippable lines for one
// destination.
type CartPartition struct {
	Eligible   []EligibleItem
	Ineligible []domain.CartItem
}

// ApplicableRules narrows the rule catalog to rules both assigned to the
// product and valid for the address. A product without assigned rules gets an
// empty result unconditionally; no default rule is substituted. An empty
// result is a legitimate outcome meaning the product cannot ship there.
func ApplicableRules(product domain.Product, addr domain.Address, catalog []domain.ShippingRule) []domain.ShippingRule {
	if len(product.ShippingRuleIDs) == 0 {
		return nil
	}

	assigned := make(map[string]struct{}, len(product.ShippingRuleIDs))
	for _, id := range product.ShippingRuleIDs {
		assigned[id] = struct{}{}
	}

	var matched []domain.ShippingRule
	for _, rule := range catalog {
		if _, ok := assigned[rule.ID]; !ok {
			continue
		}
		if !RuleCoversAddress(rule, addr) {
			continue
		}
		matched = append(matched, rule)
	}
	return matched
}

// PartitionShippable applies ApplicableRules per cart line and splits the cart
// into eligible lines (carrying their resolved rules) and ineligible lines.
func PartitionShippable(items []domain.CartItem, addr domain.Address, catalog []domain.ShippingRule) CartPartition {
	partition := CartPartition{}
	for _, item := range items {
		rules := ApplicableRules(item.Product, addr, catalog)
		if len(rules) == 0 {
			partition.Ineligible = append(partition.Ineligible, item)
			continue
		}
		partition.Eligible = append(partition.Eligible, EligibleItem{Item: item, ApplicableRules: rules})
	}
	return partition
}
