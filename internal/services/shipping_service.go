package services

import (
	"context"
	"errors"
	"sort"

	"github.com/oklog/ulid/v2"

	"github.com/cactilia/api/internal/domain"
	"github.com/cactilia/api/internal/shipping"
)

var (
	// ErrShippingPostalCodeRequired signals the one precondition the quote
	// entry point refuses to degrade on: a destination without a resolvable
	// postal code.
	ErrShippingPostalCodeRequired = errors.New("shipping quote: postal code required")
	// ErrShippingRulesUnavailable wraps rule catalog load failures.
	ErrShippingRulesUnavailable = errors.New("shipping quote: rule catalog unavailable")
)

// PackingEngine selects the package partitioning strategy.
type PackingEngine string

const (
	// PackingEngineGreedy is the weight-descending best-fit heuristic (default).
	PackingEngineGreedy PackingEngine = "greedy"
	// PackingEngineSequential packs first-fit in original cart order.
	PackingEngineSequential PackingEngine = "sequential"
)

// RuleSource loads the active shipping rule catalog.
type RuleSource interface {
	Active(ctx context.Context) ([]domain.ShippingRule, error)
}

// DebugSink receives inspection events emitted during quote computation. It
// replaces ambient global debug hooks with an explicit, injectable interface.
type DebugSink interface {
	Event(ctx context.Context, event string, fields map[string]any)
}

// DebugSinkFunc adapts ordinary functions to DebugSink.
type DebugSinkFunc func(ctx context.Context, event string, fields map[string]any)

// Event implements DebugSink.
func (f DebugSinkFunc) Event(ctx context.Context, event string, fields map[string]any) {
	f(ctx, event, fields)
}

// ShippingPolicy carries the deployment-level shipping defaults.
type ShippingPolicy struct {
	// FallbackItemWeightKg replaces missing or zero product weights so an
	// unspecified weight never turns into free-by-accident shipping.
	FallbackItemWeightKg float64
	// DefaultPackaging fills ceilings for rules without their own
	// configuracion_paquetes. Zero values leave the constraint off.
	DefaultPackaging domain.PackageConfig
}

const defaultFallbackItemWeightKg = 0.5

// ShippingQuoteService computes shipping options for a cart and destination.
type ShippingQuoteService struct {
	rules  RuleSource
	policy ShippingPolicy
	logger func(context.Context, string, map[string]any)
	debug  DebugSink
	newID  func() string
}

// ShippingQuoteServiceDeps lists the collaborators of the quote service.
type ShippingQuoteServiceDeps struct {
	Rules  RuleSource
	Policy ShippingPolicy
	Logger func(context.Context, string, map[string]any)
	Debug  DebugSink
	NewID  func() string
}

// NewShippingQuoteService validates dependencies and applies defaults.
func NewShippingQuoteService(deps ShippingQuoteServiceDeps) (*ShippingQuoteService, error) {
	if deps.Rules == nil {
		return nil, errors.New("shipping quote service: rule source is required")
	}
	policy := deps.Policy
	if policy.FallbackItemWeightKg <= 0 {
		policy.FallbackItemWeightKg = defaultFallbackItemWeightKg
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &ShippingQuoteService{
		rules:  deps.Rules,
		policy: policy,
		logger: logger,
		debug:  deps.Debug,
		newID:  newID,
	}, nil
}

// ShippingQuoteCommand is the normalisation boundary for quote requests: loose
// address and cart shapes come in, canonical records flow everywhere below.
type ShippingQuoteCommand struct {
	Address domain.AddressInput
	Items   []domain.CartItemInput
	Engine  PackingEngine
}

// CoverageSummary tells the checkout layer which products the returned options
// can and cannot ship.
type CoverageSummary struct {
	CoveredProductIDs     []string
	UnavailableProductIDs []string
	HasPartialCoverage    bool
}

// ShippingQuoteResult is the full outcome of one quote computation.
type ShippingQuoteResult struct {
	Options  []domain.ShippingOption
	Groups   []domain.OptionGroup
	Coverage CoverageSummary
}

// Quote computes every applicable shipping option for the cart and destination.
// A missing postal code is the only thrown error besides catalog load failures;
// an unshippable cart degrades to an empty option list.
func (s *ShippingQuoteService) Quote(ctx context.Context, cmd ShippingQuoteCommand) (ShippingQuoteResult, error) {
	addr := cmd.Address.Normalize()
	if addr.PostalCode == "" {
		return ShippingQuoteResult{}, ErrShippingPostalCodeRequired
	}

	items := domain.NormalizeCartItems(cmd.Items)
	if len(items) == 0 {
		return ShippingQuoteResult{Options: []domain.ShippingOption{}}, nil
	}
	items = s.applyFallbackWeights(ctx, items)

	catalog, err := s.rules.Active(ctx)
	if err != nil {
		return ShippingQuoteResult{}, errors.Join(ErrShippingRulesUnavailable, err)
	}
	s.emit(ctx, "rules_loaded", map[string]any{"count": len(catalog)})

	partition := shipping.PartitionShippable(items, addr, catalog)
	for _, item := range partition.Ineligible {
		s.logger(ctx, "product_unshippable", map[string]any{
			"productId": item.Product.ID,
			"ruleIds":   item.Product.ShippingRuleIDs,
			"zip":       addr.PostalCode,
		})
		s.emit(ctx, "product_unshippable", map[string]any{"productId": item.Product.ID})
	}

	engine := cmd.Engine
	if engine == "" {
		engine = PackingEngineGreedy
	}

	options := s.buildOptions(ctx, partition, catalog, len(items), engine)
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].TotalCost < options[j].TotalCost
	})

	return ShippingQuoteResult{
		Options:  options,
		Groups:   shipping.GroupOptions(options),
		Coverage: buildCoverageSummary(partition),
	}, nil
}

func (s *ShippingQuoteService) buildOptions(ctx context.Context, partition shipping.CartPartition, catalog []domain.ShippingRule, cartLines int, engine PackingEngine) []domain.ShippingOption {
	// Regroup eligible lines per rule, preserving catalog order.
	itemsByRule := make(map[string][]domain.CartItem)
	for _, eligible := range partition.Eligible {
		for _, rule := range eligible.ApplicableRules {
			itemsByRule[rule.ID] = append(itemsByRule[rule.ID], eligible.Item)
		}
	}

	options := make([]domain.ShippingOption, 0, len(itemsByRule))
	for _, rule := range catalog {
		ruleItems := itemsByRule[rule.ID]
		if len(ruleItems) == 0 {
			continue
		}

		cfg := shipping.EffectivePackaging(rule, s.policy.DefaultPackaging)
		var packages []domain.Package
		if engine == PackingEngineSequential {
			packages = shipping.PackItemsSequential(ruleItems, rule.ID, cfg)
		} else {
			packages = shipping.PackItems(ruleItems, rule.ID, cfg)
		}

		totalCost, priced := shipping.GroupCost(packages, rule)
		estimate := shipping.EstimateDelivery(rule)

		option := domain.ShippingOption{
			ID:               s.newID(),
			RuleID:           rule.ID,
			Zone:             rule.Zone,
			ZoneType:         rule.ZoneType(),
			TotalCost:        totalCost,
			MinDays:          estimate.MinDays,
			MaxDays:          estimate.MaxDays,
			DeliveryTimeText: estimate.Text,
			Packages:         priced,
			CoversAllItems:   len(ruleItems) == cartLines,
		}
		if carrier, ok := shipping.CheapestCarrier(rule); ok {
			option.Carrier = carrier.Name
			option.Label = carrier.Label
		}
		if option.Label == "" {
			option.Label = rule.Zone
		}
		option.IsFree = allPackagesFree(priced)
		if option.IsFree && len(priced) > 0 {
			option.FreeReason = priced[0].FreeReason
		}

		s.emit(ctx, "option_computed", map[string]any{
			"ruleId":   rule.ID,
			"packages": len(priced),
			"cost":     totalCost,
		})
		options = append(options, option)
	}
	return options
}

// applyFallbackWeights substitutes the configured fallback weight for products
// without one. The caller's slice is left untouched.
func (s *ShippingQuoteService) applyFallbackWeights(ctx context.Context, items []domain.CartItem) []domain.CartItem {
	adjusted := make([]domain.CartItem, len(items))
	copy(adjusted, items)
	for idx := range adjusted {
		if adjusted[idx].Product.Weight > 0 {
			continue
		}
		adjusted[idx].Product.Weight = s.policy.FallbackItemWeightKg
		s.logger(ctx, "fallback_weight_applied", map[string]any{
			"productId": adjusted[idx].Product.ID,
			"weightKg":  s.policy.FallbackItemWeightKg,
		})
	}
	return adjusted
}

func (s *ShippingQuoteService) emit(ctx context.Context, event string, fields map[string]any) {
	if s.debug == nil {
		return
	}
	s.debug.Event(ctx, event, fields)
}

func allPackagesFree(packages []domain.Package) bool {
	if len(packages) == 0 {
		return false
	}
	for _, pkg := range packages {
		if !pkg.IsFree {
			return false
		}
	}
	return true
}

func buildCoverageSummary(partition shipping.CartPartition) CoverageSummary {
	summary := CoverageSummary{}
	seen := make(map[string]struct{})
	for _, eligible := range partition.Eligible {
		id := eligible.Item.Product.ID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		summary.CoveredProductIDs = append(summary.CoveredProductIDs, id)
	}
	for _, item := range partition.Ineligible {
		id := item.Product.ID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		summary.UnavailableProductIDs = append(summary.UnavailableProductIDs, id)
	}
	summary.HasPartialCoverage = len(summary.CoveredProductIDs) > 0 && len(summary.UnavailableProductIDs) > 0
	return summary
}
