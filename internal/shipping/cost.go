package shipping

import (
	"math"

	"github.com/cactilia/api/internal/domain"
)

// Free-shipping reasons recorded on priced packages.
const (
	// FreeReasonAlways marks rules with the unconditional envio_gratis flag.
	FreeReasonAlways = "always_free"
	// FreeReasonMinimumAmount marks subtotals clearing envio_gratis_monto_minimo.
	FreeReasonMinimumAmount = "minimum_amount"
)

// CostBreakdown is the priced outcome for a single package.
type CostBreakdown struct {
	BaseCost   float64
	ExtraCost  float64
	TotalCost  float64
	IsFree     bool
	FreeReason string
}

// CheapestCarrier returns the carrier option with the lowest price. On price
// ties the earliest array entry wins, keeping selection deterministic.
func CheapestCarrier(rule domain.ShippingRule) (domain.CarrierOption, bool) {
	if len(rule.CarrierOptions) == 0 {
		return domain.CarrierOption{}, false
	}
	best := rule.CarrierOptions[0]
	for _, option := range rule.CarrierOptions[1:] {
		if option.Price < best.Price {
			best = option
		}
	}
	return best, true
}

// RulePrice resolves the base price for one package: the cheapest carrier
// option's price when carrier options exist, the rule's precio_base otherwise.
func RulePrice(rule domain.ShippingRule) float64 {
	if carrier, ok := CheapestCarrier(rule); ok {
		return carrier.Price
	}
	return rule.BasePrice
}

// RulePackaging resolves the packaging configuration governing the rule: the
// cheapest carrier option's configuration when it declares one, the rule-level
// configuracion_paquetes otherwise.
func RulePackaging(rule domain.ShippingRule) domain.PackageConfig {
	if carrier, ok := CheapestCarrier(rule); ok && carrier.Packages != nil {
		return *carrier.Packages
	}
	return rule.Packages
}

// EffectivePackaging merges the rule's packaging configuration with deployment
// defaults: absent ceilings fall back to the defaults. Disabled defaults leave
// the constraint off, which makes the packer emit a single package.
func EffectivePackaging(rule domain.ShippingRule, defaults domain.PackageConfig) domain.PackageConfig {
	cfg := RulePackaging(rule)
	if !cfg.HasWeightLimit() && defaults.HasWeightLimit() {
		cfg.MaxWeightKg = defaults.MaxWeightKg
	}
	if !cfg.HasItemLimit() && defaults.HasItemLimit() {
		cfg.MaxItems = defaults.MaxItems
	}
	return cfg
}

// PackageCost prices one package under the rule. Precedence is fixed: the
// unconditional envio_gratis flag wins over the subtotal threshold, which wins
// over the priced path.
func PackageCost(pkg domain.Package, rule domain.ShippingRule, orderSubtotal float64) CostBreakdown {
	if rule.FreeShipping {
		return CostBreakdown{IsFree: true, FreeReason: FreeReasonAlways}
	}
	if rule.FreeShippingMinAmount > 0 && orderSubtotal >= rule.FreeShippingMinAmount {
		return CostBreakdown{IsFree: true, FreeReason: FreeReasonMinimumAmount}
	}
	base := RulePrice(rule)
	extra := extraWeightCost(pkg, rule)
	return CostBreakdown{BaseCost: base, ExtraCost: extra, TotalCost: base + extra}
}

// GroupCost prices every package of an option, applying the free-shipping
// threshold to each package's own subtotal independently: a package clearing
// the threshold ships free even when its siblings do not. When every package
// ends up free the aggregate is forced to exactly zero so rounding residue
// never leaks into a free option. Packages are cloned before annotation.
func GroupCost(packages []domain.Package, rule domain.ShippingRule) (float64, []domain.Package) {
	updated := make([]domain.Package, 0, len(packages))
	var total float64
	allFree := len(packages) > 0

	for _, pkg := range packages {
		clone := pkg.Clone()
		var cost CostBreakdown
		switch {
		case rule.FreeShipping:
			cost = CostBreakdown{IsFree: true, FreeReason: FreeReasonAlways}
		case rule.FreeShippingMinAmount > 0 && clone.Subtotal() >= rule.FreeShippingMinAmount:
			cost = CostBreakdown{IsFree: true, FreeReason: FreeReasonMinimumAmount}
		default:
			base := RulePrice(rule)
			extra := extraWeightCost(clone, rule)
			cost = CostBreakdown{BaseCost: base, ExtraCost: extra, TotalCost: base + extra}
		}
		annotate(&clone, cost)
		total += cost.TotalCost
		if !cost.IsFree {
			allFree = false
		}
		updated = append(updated, clone)
	}

	if allFree {
		total = 0
	}
	return total, updated
}

// TotalShippingCost is the order-level variant: when the order subtotal clears
// the threshold every package ships free, otherwise per-package costs are summed.
func TotalShippingCost(packages []domain.Package, rule domain.ShippingRule, orderSubtotal float64) float64 {
	if rule.FreeShipping {
		return 0
	}
	if rule.FreeShippingMinAmount > 0 && orderSubtotal >= rule.FreeShippingMinAmount {
		return 0
	}
	var total float64
	for _, pkg := range packages {
		total += RulePrice(rule) + extraWeightCost(pkg, rule)
	}
	return total
}

// extraWeightCost charges each started kilogram above the rule's own weight
// ceiling. Extra weight always rounds up to the next whole kilogram before
// multiplying, so partial kilograms are never undercharged.
func extraWeightCost(pkg domain.Package, rule domain.ShippingRule) float64 {
	cfg := RulePackaging(rule)
	if !cfg.HasWeightLimit() || cfg.ExtraWeightCostPerKg <= 0 {
		return 0
	}
	over := pkg.TotalWeight - cfg.MaxWeightKg
	if over <= weightEpsilon {
		return 0
	}
	return math.Ceil(over-weightEpsilon) * cfg.ExtraWeightCostPerKg
}

func annotate(pkg *domain.Package, cost CostBreakdown) {
	pkg.BaseCost = cost.BaseCost
	pkg.ExtraCost = cost.ExtraCost
	pkg.TotalCost = cost.TotalCost
	pkg.IsFree = cost.IsFree
	pkg.FreeReason = cost.FreeReason
}
