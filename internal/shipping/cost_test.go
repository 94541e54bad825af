package shipping

import (
	"reflect"
	"testing"

	"github.com/cactilia/api/internal/domain"
)

func TestCheapestCarrierTieBreak(t *testing.T) {
	rule := domain.ShippingRule{
		CarrierOptions: []domain.CarrierOption{
			{Name: "Estafeta", Price: 50},
			{Name: "DHL", Price: 50},
			{Name: "FedEx", Price: 70},
		},
	}
	carrier, ok := CheapestCarrier(rule)
	if !ok || carrier.Name != "Estafeta" {
		t.Fatalf("expected first carrier on a price tie, got %+v", carrier)
	}
}

func TestRulePrice(t *testing.T) {
	rule := domain.ShippingRule{BasePrice: 120}
	if got := RulePrice(rule); got != 120 {
		t.Fatalf("RulePrice without carriers = %v, want 120", got)
	}
	rule.CarrierOptions = []domain.CarrierOption{{Name: "DHL", Price: 80}, {Name: "FedEx", Price: 95}}
	if got := RulePrice(rule); got != 80 {
		t.Fatalf("RulePrice with carriers = %v, want 80", got)
	}
}

func TestRulePackagingPrefersCarrierConfig(t *testing.T) {
	carrierCfg := domain.PackageConfig{MaxWeightKg: 10, MaxItems: 5}
	rule := domain.ShippingRule{
		Packages:       domain.PackageConfig{MaxWeightKg: 20},
		CarrierOptions: []domain.CarrierOption{{Name: "DHL", Price: 80, Packages: &carrierCfg}},
	}
	if got := RulePackaging(rule); got != carrierCfg {
		t.Fatalf("RulePackaging = %+v, want carrier config %+v", got, carrierCfg)
	}

	rule.CarrierOptions[0].Packages = nil
	if got := RulePackaging(rule); got.MaxWeightKg != 20 {
		t.Fatalf("RulePackaging without carrier config = %+v, want rule config", got)
	}
}

func TestEffectivePackagingFillsDefaults(t *testing.T) {
	defaults := domain.PackageConfig{MaxWeightKg: 20, MaxItems: 10}

	rule := domain.ShippingRule{Packages: domain.PackageConfig{MaxWeightKg: 5}}
	got := EffectivePackaging(rule, defaults)
	if got.MaxWeightKg != 5 || got.MaxItems != 10 {
		t.Fatalf("EffectivePackaging = %+v, want weight 5 items 10", got)
	}

	got = EffectivePackaging(domain.ShippingRule{}, domain.PackageConfig{})
	if got.HasWeightLimit() || got.HasItemLimit() {
		t.Fatalf("disabled defaults must leave constraints off, got %+v", got)
	}
}

func TestPackageCostPrecedence(t *testing.T) {
	pkg := domain.Package{TotalWeight: 1}

	t.Run("unconditional flag wins over everything", func(t *testing.T) {
		rule := domain.ShippingRule{FreeShipping: true, FreeShippingMinAmount: 500, BasePrice: 100}
		got := PackageCost(pkg, rule, 0)
		if !got.IsFree || got.FreeReason != FreeReasonAlways || got.TotalCost != 0 {
			t.Fatalf("unexpected breakdown: %+v", got)
		}
	})

	t.Run("subtotal threshold", func(t *testing.T) {
		rule := domain.ShippingRule{FreeShippingMinAmount: 500, BasePrice: 100}
		got := PackageCost(pkg, rule, 600)
		if !got.IsFree || got.FreeReason != FreeReasonMinimumAmount {
			t.Fatalf("expected free via threshold, got %+v", got)
		}
	})

	t.Run("below the threshold pays the base price", func(t *testing.T) {
		rule := domain.ShippingRule{FreeShippingMinAmount: 500, BasePrice: 100}
		got := PackageCost(pkg, rule, 499.99)
		if got.IsFree || got.TotalCost != 100 {
			t.Fatalf("expected priced breakdown of 100, got %+v", got)
		}
	})
}

func TestPackageCostExtraWeight(t *testing.T) {
	rule := domain.ShippingRule{
		BasePrice: 100,
		Packages:  domain.PackageConfig{MaxWeightKg: 2, ExtraWeightCostPerKg: 50},
	}

	tests := []struct {
		name   string
		weight float64
		want   CostBreakdown
	}{
		{
			name:   "one kilogram over",
			weight: 3,
			want:   CostBreakdown{BaseCost: 100, ExtraCost: 50, TotalCost: 150},
		},
		{
			name:   "partial kilograms round up",
			weight: 2.4,
			want:   CostBreakdown{BaseCost: 100, ExtraCost: 50, TotalCost: 150},
		},
		{
			name:   "just over two kilograms rounds to two",
			weight: 4.1,
			want:   CostBreakdown{BaseCost: 100, ExtraCost: 150, TotalCost: 250},
		},
		{
			name:   "exactly at the ceiling",
			weight: 2,
			want:   CostBreakdown{BaseCost: 100, TotalCost: 100},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pkg := domain.Package{TotalWeight: tc.weight}
			if got := PackageCost(pkg, rule, 0); got != tc.want {
				t.Fatalf("PackageCost(weight %.1f) = %+v, want %+v", tc.weight, got, tc.want)
			}
		})
	}
}

func TestPackageCostIsIdempotent(t *testing.T) {
	rule := domain.ShippingRule{
		BasePrice: 100,
		Packages:  domain.PackageConfig{MaxWeightKg: 2, ExtraWeightCostPerKg: 50},
	}
	pkg := domain.Package{TotalWeight: 3.7}

	first := PackageCost(pkg, rule, 250)
	second := PackageCost(pkg, rule, 250)
	if first != second {
		t.Fatalf("same inputs priced differently: %+v vs %+v", first, second)
	}
}

func TestGroupCostPerPackageThreshold(t *testing.T) {
	rule := domain.ShippingRule{BasePrice: 100, FreeShippingMinAmount: 500}
	packages := []domain.Package{
		{Items: []domain.PackageItem{{Product: domain.Product{ID: "rich", Price: 300}, Quantity: 2}}},
		{Items: []domain.PackageItem{{Product: domain.Product{ID: "cheap", Price: 50}, Quantity: 2}}},
	}

	total, priced := GroupCost(packages, rule)
	if total != 100 {
		t.Fatalf("total = %v, want 100", total)
	}
	if !priced[0].IsFree || priced[0].FreeReason != FreeReasonMinimumAmount {
		t.Fatalf("package clearing the threshold should ship free: %+v", priced[0])
	}
	if priced[1].IsFree || priced[1].TotalCost != 100 {
		t.Fatalf("package below the threshold should pay the base price: %+v", priced[1])
	}

	// Inputs are annotated on clones only.
	if packages[0].IsFree || packages[0].TotalCost != 0 {
		t.Fatalf("GroupCost mutated its input: %+v", packages[0])
	}
}

func TestGroupCostAllFreeForcesZero(t *testing.T) {
	rule := domain.ShippingRule{BasePrice: 100, FreeShippingMinAmount: 500}
	packages := []domain.Package{
		{Items: []domain.PackageItem{{Product: domain.Product{ID: "a", Price: 600}, Quantity: 1}}},
		{Items: []domain.PackageItem{{Product: domain.Product{ID: "b", Price: 700}, Quantity: 1}}},
	}

	total, priced := GroupCost(packages, rule)
	if total != 0 {
		t.Fatalf("all-free group must cost exactly zero, got %v", total)
	}
	for _, pkg := range priced {
		if !pkg.IsFree {
			t.Fatalf("expected every package free: %+v", pkg)
		}
	}
}

func TestGroupCostIsIdempotent(t *testing.T) {
	rule := domain.ShippingRule{BasePrice: 80, Packages: domain.PackageConfig{MaxWeightKg: 4, ExtraWeightCostPerKg: 25}}
	packages := []domain.Package{
		{TotalWeight: 6, Items: []domain.PackageItem{{Product: domain.Product{ID: "a", Price: 90}, Quantity: 1}}},
	}

	totalFirst, pricedFirst := GroupCost(packages, rule)
	totalSecond, pricedSecond := GroupCost(packages, rule)
	if totalFirst != totalSecond || !reflect.DeepEqual(pricedFirst, pricedSecond) {
		t.Fatalf("repeated pricing diverged: %v/%v", pricedFirst, pricedSecond)
	}
}

func TestTotalShippingCost(t *testing.T) {
	rule := domain.ShippingRule{BasePrice: 100, FreeShippingMinAmount: 500}
	packages := []domain.Package{{TotalWeight: 1}, {TotalWeight: 1}}

	if got := TotalShippingCost(packages, rule, 600); got != 0 {
		t.Fatalf("order clearing the threshold should ship free, got %v", got)
	}
	if got := TotalShippingCost(packages, rule, 200); got != 200 {
		t.Fatalf("two packages at base price should cost 200, got %v", got)
	}
}
