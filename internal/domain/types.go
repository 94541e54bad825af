package domain

import "math"

// Address is the canonical destination shape used by all shipping computations.
// Inputs arrive through AddressInput and are normalised exactly once at the
// entry boundary.
type Address struct {
	PostalCode string
	State      string
	City       string
	Country    string
}

// Product is the read-only subset of catalog data shipping cares about.
type Product struct {
	ID   string
	Name string
	// Price is the tax-inclusive unit price.
	Price float64
	// Weight is the unit weight in kilograms. Zero means unspecified; the
	// quote service substitutes the configured fallback weight.
	Weight float64
	// ShippingRuleIDs lists the rules assigned to the product. An empty list
	// makes the product categorically unshippable; no default rule is invented.
	ShippingRuleIDs []string
}

// CartItem pairs a product with a purchase quantity.
type CartItem struct {
	Product  Product
	Quantity int
}

// Weight returns the total physical weight of the line in kilograms.
func (i CartItem) Weight() float64 {
	return sanitizeNumber(i.Product.Weight) * float64(i.Quantity)
}

// Subtotal returns the total price of the line.
func (i CartItem) Subtotal() float64 {
	return sanitizeNumber(i.Product.Price) * float64(i.Quantity)
}

// CartWeight sums the physical weight of every line in kilograms.
func CartWeight(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Weight()
	}
	return total
}

// CartSubtotal sums the price of every line.
func CartSubtotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// CartQuantity sums the unit count of every line.
func CartQuantity(items []CartItem) int {
	var total int
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// PackageConfig is the packaging ceiling attached to a rule or carrier option.
// Non-positive values mean the corresponding constraint is not configured.
type PackageConfig struct {
	// MaxWeightKg caps the weight of a single package (peso_maximo_paquete).
	MaxWeightKg float64
	// MaxItems caps the unit count of a single package (maximo_productos_por_paquete).
	MaxItems int
	// ExtraWeightCostPerKg prices each started kilogram above MaxWeightKg
	// (costo_por_kg_extra).
	ExtraWeightCostPerKg float64
}

// HasWeightLimit reports whether a weight ceiling is configured.
func (c PackageConfig) HasWeightLimit() bool { return c.MaxWeightKg > 0 }

// HasItemLimit reports whether a unit-count ceiling is configured.
func (c PackageConfig) HasItemLimit() bool { return c.MaxItems > 0 }

// CarrierOption is a carrier sub-option nested under a rule
// (opciones_mensajeria). When present, the cheapest option's price and
// packaging configuration replace the rule-level base fields.
type CarrierOption struct {
	Name         string
	Label        string
	Price        float64
	Packages     *PackageConfig
	MinDays      *int
	MaxDays      *int
	DeliveryText string
}

// ShippingRule is a named shipping policy bound to a geographic coverage set
// and a pricing/packaging configuration.
type ShippingRule struct {
	ID     string
	Zone   string
	Active bool
	// Coverage holds the raw zipcodes tokens: the national token, estado_<STATE>
	// prefixes, literal postal codes, and <start>-<end> numeric ranges.
	Coverage []string
	// FreeShipping grants unconditional free shipping (envio_gratis); it
	// short-circuits every other pricing path.
	FreeShipping bool
	// FreeShippingMinAmount is the subtotal threshold for conditional free
	// shipping (envio_gratis_monto_minimo). Zero means no threshold.
	FreeShippingMinAmount float64
	// VariableFreeShipping gates the threshold (envio_variable.aplica).
	VariableFreeShipping bool
	BasePrice            float64
	Packages             PackageConfig
	CarrierOptions       []CarrierOption
	MinDays              *int
	MaxDays              *int
	DeliveryText         string
}

// ZoneType normalises the rule zone for presentation grouping.
func (r ShippingRule) ZoneType() string {
	return NormalizeZoneType(r.Zone)
}

// PackageItem is a product line inside a physical package.
type PackageItem struct {
	Product  Product
	Quantity int
}

// Package is an ephemeral parcel produced during one shipping-option
// computation; it is never persisted.
type Package struct {
	RuleID        string
	Items         []PackageItem
	TotalWeight   float64
	TotalQuantity int
	// ExceedsLimits marks packages holding a single unit whose own weight
	// already exceeds the rule ceiling; such packages are isolated, not rejected.
	ExceedsLimits bool

	// Cost annotations filled by the cost calculator on a cloned package.
	BaseCost   float64
	ExtraCost  float64
	TotalCost  float64
	IsFree     bool
	FreeReason string
}

// Subtotal sums the price of the items contained in the package.
func (p Package) Subtotal() float64 {
	var total float64
	for _, item := range p.Items {
		total += sanitizeNumber(item.Product.Price) * float64(item.Quantity)
	}
	return total
}

// Clone returns a copy of the package with its own item slice, so cost
// annotation never mutates the packer's output.
func (p Package) Clone() Package {
	cloned := p
	cloned.Items = make([]PackageItem, len(p.Items))
	copy(cloned.Items, p.Items)
	return cloned
}

// ShippingOption is one computed offer presented to the shopper.
type ShippingOption struct {
	ID               string
	RuleID           string
	Zone             string
	ZoneType         string
	Carrier          string
	Label            string
	TotalCost        float64
	IsFree           bool
	FreeReason       string
	MinDays          *int
	MaxDays          *int
	DeliveryTimeText string
	Packages         []Package
	// CoversAllItems reports whether the option ships every product in the cart.
	CoversAllItems bool
	// IsFallback marks synthetic options that must never join the free-shipping group.
	IsFallback bool
	// CombinedRuleIDs lists constituent rules when the option merges several services.
	CombinedRuleIDs []string
}

// OptionGroup buckets shipping options for presentation.
type OptionGroup struct {
	ID       string
	Title    string
	Subtitle string
	Icon     string
	Options  []ShippingOption
}

// sanitizeNumber coerces NaN, infinities, and negative values coming from
// hand-entered catalog data to zero instead of letting them poison totals.
func sanitizeNumber(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}
