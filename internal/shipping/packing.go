package shipping

import (
	"math"
	"sort"

	"github.com/cactilia/api/internal/domain"
)

// weightEpsilon absorbs floating point drift when comparing accumulated
// package weight against the configured ceiling.
const weightEpsilon = 1e-9

// PackItems partitions cart lines into physical packages under cfg using a
// weight-descending greedy heuristic:
//
//  1. Units heavier than the ceiling are isolated one per package and flagged,
//     never merged with other items.
//  2. Remaining units top off already-open packages by residual weight and
//     item capacity; lines of the same product merge instead of duplicating.
//  3. Leftover quantity spawns new packages sized to the tightest constraint.
//
// When neither ceiling is configured a single package holds the whole cart.
// The input slice is never mutated.
func PackItems(items []domain.CartItem, ruleID string, cfg domain.PackageConfig) []domain.Package {
	if len(items) == 0 {
		return nil
	}
	if !cfg.HasWeightLimit() && !cfg.HasItemLimit() {
		return []domain.Package{singlePackage(items, ruleID)}
	}

	sorted := make([]domain.CartItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return unitWeight(sorted[i]) > unitWeight(sorted[j])
	})

	var packages []domain.Package
	for _, item := range sorted {
		weight := unitWeight(item)
		remaining := item.Quantity

		if cfg.HasWeightLimit() && weight > cfg.MaxWeightKg {
			for unit := 0; unit < remaining; unit++ {
				pkg := domain.Package{RuleID: ruleID, ExceedsLimits: true}
				addUnits(&pkg, item.Product, 1, weight)
				packages = append(packages, pkg)
			}
			continue
		}

		for idx := range packages {
			if remaining == 0 {
				break
			}
			pkg := &packages[idx]
			if pkg.ExceedsLimits {
				continue
			}
			fit := unitsThatFit(*pkg, cfg, weight, remaining)
			if fit <= 0 {
				continue
			}
			addUnits(pkg, item.Product, fit, weight)
			remaining -= fit
		}

		for remaining > 0 {
			size := remaining
			if cfg.HasItemLimit() && size > cfg.MaxItems {
				size = cfg.MaxItems
			}
			if cfg.HasWeightLimit() && weight > 0 {
				byWeight := int(math.Floor(cfg.MaxWeightKg/weight + weightEpsilon))
				if byWeight < 1 {
					byWeight = 1
				}
				if size > byWeight {
					size = byWeight
				}
			}
			pkg := domain.Package{RuleID: ruleID}
			addUnits(&pkg, item.Product, size, weight)
			packages = append(packages, pkg)
			remaining -= size
		}
	}
	return packages
}

// PackItemsSequential is the alternative engine: first-fit in original cart
// order with a single open package at a time. Same constraints, same oversize
// isolation, no weight sorting.
func PackItemsSequential(items []domain.CartItem, ruleID string, cfg domain.PackageConfig) []domain.Package {
	if len(items) == 0 {
		return nil
	}
	if !cfg.HasWeightLimit() && !cfg.HasItemLimit() {
		return []domain.Package{singlePackage(items, ruleID)}
	}

	var packages []domain.Package
	current := domain.Package{RuleID: ruleID}
	flush := func() {
		if current.TotalQuantity > 0 {
			packages = append(packages, current)
		}
		current = domain.Package{RuleID: ruleID}
	}

	for _, item := range items {
		weight := unitWeight(item)

		if cfg.HasWeightLimit() && weight > cfg.MaxWeightKg {
			flush()
			for unit := 0; unit < item.Quantity; unit++ {
				pkg := domain.Package{RuleID: ruleID, ExceedsLimits: true}
				addUnits(&pkg, item.Product, 1, weight)
				packages = append(packages, pkg)
			}
			continue
		}

		for unit := 0; unit < item.Quantity; unit++ {
			if unitsThatFit(current, cfg, weight, 1) < 1 {
				flush()
			}
			addUnits(&current, item.Product, 1, weight)
		}
	}
	flush()
	return packages
}

// unitsThatFit computes how many of the remaining units fit into pkg under the
// configured ceilings.
func unitsThatFit(pkg domain.Package, cfg domain.PackageConfig, weight float64, remaining int) int {
	fit := remaining
	if cfg.HasItemLimit() {
		byCount := cfg.MaxItems - pkg.TotalQuantity
		if byCount < fit {
			fit = byCount
		}
	}
	if cfg.HasWeightLimit() && weight > 0 {
		byWeight := int(math.Floor((cfg.MaxWeightKg-pkg.TotalWeight)/weight + weightEpsilon))
		if byWeight < fit {
			fit = byWeight
		}
	}
	if fit < 0 {
		return 0
	}
	return fit
}

func addUnits(pkg *domain.Package, product domain.Product, quantity int, weight float64) {
	for idx := range pkg.Items {
		if pkg.Items[idx].Product.ID == product.ID {
			pkg.Items[idx].Quantity += quantity
			pkg.TotalQuantity += quantity
			pkg.TotalWeight += weight * float64(quantity)
			return
		}
	}
	pkg.Items = append(pkg.Items, domain.PackageItem{Product: product, Quantity: quantity})
	pkg.TotalQuantity += quantity
	pkg.TotalWeight += weight * float64(quantity)
}

func singlePackage(items []domain.CartItem, ruleID string) domain.Package {
	pkg := domain.Package{RuleID: ruleID}
	for _, item := range items {
		addUnits(&pkg, item.Product, item.Quantity, unitWeight(item))
	}
	return pkg
}

func unitWeight(item domain.CartItem) float64 {
	if item.Quantity <= 0 {
		return 0
	}
	return item.Weight() / float64(item.Quantity)
}
