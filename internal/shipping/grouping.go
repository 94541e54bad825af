package shipping

import (
	"strings"

	"github.com/cactilia/api/internal/domain"
)

// GroupOptions buckets shipping options into named presentation groups in a
// single pass. Each option joins at most one group, claimed in this order:
//
//  1. Free shipping: zero-cost non-fallback options covering the whole cart.
//  2. Zone-type buckets: local, nacional, internacional, then a generic bucket
//     per remaining zone type.
//  3. Local + national combinations.
//  4. Combined services: options merging more than one constituent rule.
//
// Groups that end up empty are omitted from the result.
func GroupOptions(options []domain.ShippingOption) []domain.OptionGroup {
	claimed := make(map[string]struct{}, len(options))

	take := func(match func(domain.ShippingOption) bool) []domain.ShippingOption {
		var picked []domain.ShippingOption
		for _, option := range options {
			if _, done := claimed[option.ID]; done {
				continue
			}
			if !match(option) {
				continue
			}
			claimed[option.ID] = struct{}{}
			picked = append(picked, option)
		}
		return picked
	}

	var groups []domain.OptionGroup
	appendGroup := func(group domain.OptionGroup) {
		if len(group.Options) > 0 {
			groups = append(groups, group)
		}
	}

	appendGroup(domain.OptionGroup{
		ID:       "free_shipping",
		Title:    "Envío gratuito",
		Subtitle: "Tu pedido completo sin costo de envío",
		Icon:     "bi-gift",
		Options: take(func(option domain.ShippingOption) bool {
			return !option.IsFallback && option.TotalCost == 0 && option.CoversAllItems
		}),
	})

	zoneGroups := []domain.OptionGroup{
		{ID: "local", Title: "Envío local", Subtitle: "Entrega en tu zona", Icon: "bi-house-door"},
		{ID: "nacional", Title: "Envío nacional", Subtitle: "Entrega a todo el país", Icon: "bi-truck"},
		{ID: "internacional", Title: "Envío internacional", Subtitle: "Entrega fuera del país", Icon: "bi-globe"},
	}
	for _, zone := range zoneGroups {
		zoneType := zone.ID
		zone.Options = take(func(option domain.ShippingOption) bool {
			return option.ZoneType == zoneType
		})
		appendGroup(zone)
	}

	// Generic buckets for zone types without a fixed group, preserving
	// first-seen order. Combination types wait for their dedicated groups.
	for _, option := range options {
		if _, done := claimed[option.ID]; done {
			continue
		}
		zoneType := option.ZoneType
		if zoneType == "" || zoneType == "local_national" || zoneType == "combined" {
			continue
		}
		appendGroup(domain.OptionGroup{
			ID:       zoneType,
			Title:    "Envío " + titleCase(zoneType),
			Subtitle: "Opciones de envío " + zoneType,
			Icon:     "bi-box-seam",
			Options: take(func(option domain.ShippingOption) bool {
				return option.ZoneType == zoneType
			}),
		})
	}

	appendGroup(domain.OptionGroup{
		ID:       "local_national",
		Title:    "Local + Nacional",
		Subtitle: "Combinación de servicios local y nacional",
		Icon:     "bi-arrow-left-right",
		Options: take(func(option domain.ShippingOption) bool {
			return option.ZoneType == "local_national"
		}),
	})

	appendGroup(domain.OptionGroup{
		ID:       "combined",
		Title:    "Servicios combinados",
		Subtitle: "Varios servicios de envío en una sola opción",
		Icon:     "bi-boxes",
		Options: take(func(option domain.ShippingOption) bool {
			return option.ZoneType == "combined" || len(option.CombinedRuleIDs) > 1
		}),
	})

	return groups
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
