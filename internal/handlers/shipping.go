package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cactilia/api/internal/domain"
	"github.com/cactilia/api/internal/platform/httpx"
	"github.com/cactilia/api/internal/repositories"
	"github.com/cactilia/api/internal/services"
)

const maxQuoteBodySize = 64 * 1024

// ShippingHandlers exposes the shipping quote and rule catalog endpoints.
type ShippingHandlers struct {
	quotes *services.ShippingQuoteService
	rules  repositories.ShippingRuleRepository
}

// NewShippingHandlers constructs handlers over the quote service and rule catalog.
func NewShippingHandlers(quotes *services.ShippingQuoteService, rules repositories.ShippingRuleRepository) *ShippingHandlers {
	return &ShippingHandlers{quotes: quotes, rules: rules}
}

// Routes wires the /shipping endpoints onto the provided router.
func (h *ShippingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/quote", h.quote)
	r.Get("/rules", h.listRules)
}

type shippingQuoteRequest struct {
	Address domain.AddressInput    `json:"address"`
	Items   []domain.CartItemInput `json:"items"`
	Engine  string                 `json:"engine"`
}

func (h *ShippingHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("shipping_service_unavailable", "shipping service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req shippingQuoteRequest
	if err := decodeJSONBody(r, maxQuoteBodySize, &req); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	result, err := h.quotes.Quote(ctx, services.ShippingQuoteCommand{
		Address: req.Address,
		Items:   req.Items,
		Engine:  services.PackingEngine(req.Engine),
	})
	if err != nil {
		h.writeQuoteError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildQuotePayload(result))
}

func (h *ShippingHandlers) listRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.rules == nil {
		httpx.WriteError(ctx, w, httpx.NewError("shipping_service_unavailable", "rule catalog is unavailable", http.StatusServiceUnavailable))
		return
	}

	rules, err := h.rules.Active(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("rules_unavailable", "failed to load shipping rules", http.StatusServiceUnavailable))
		return
	}

	payload := make([]rulePayload, 0, len(rules))
	for _, rule := range rules {
		payload = append(payload, buildRulePayload(rule))
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": payload})
}

func (h *ShippingHandlers) writeQuoteError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrShippingPostalCodeRequired):
		httpx.WriteError(ctx, w, httpx.NewError("postal_code_required", "a destination postal code is required", http.StatusBadRequest))
	case errors.Is(err, services.ErrShippingRulesUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("rules_unavailable", "shipping rules are temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("shipping_error", "failed to compute shipping options", http.StatusInternalServerError))
	}
}

type quotePayload struct {
	Options  []optionPayload `json:"options"`
	Groups   []groupPayload  `json:"groups"`
	Coverage coveragePayload `json:"coverage"`
}

type optionPayload struct {
	ID       string `json:"id"`
	RuleID   string `json:"ruleId"`
	Zone     string `json:"zone"`
	ZoneType string `json:"zoneType"`
	Carrier  string `json:"carrier,omitempty"`
	Label    string `json:"label"`
	// CalculatedCost mirrors TotalCost for older selector components.
	TotalCost        float64          `json:"totalCost"`
	CalculatedCost   float64          `json:"calculatedCost"`
	IsFree           bool             `json:"isFree"`
	FreeReason       string           `json:"freeReason,omitempty"`
	MinDays          *int             `json:"minDays"`
	MaxDays          *int             `json:"maxDays"`
	DeliveryTimeText string           `json:"deliveryTimeText,omitempty"`
	CoversAllItems   bool             `json:"coversAllItems"`
	Packages         []packagePayload `json:"packages"`
}

type packagePayload struct {
	TotalWeight   float64              `json:"totalWeight"`
	TotalQuantity int                  `json:"totalQuantity"`
	ExceedsLimits bool                 `json:"exceedsLimits"`
	BaseCost      float64              `json:"baseCost"`
	ExtraCost     float64              `json:"extraCost"`
	TotalCost     float64              `json:"totalCost"`
	IsFree        bool                 `json:"isFree"`
	Items         []packageItemPayload `json:"items"`
}

type packageItemPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
}

type groupPayload struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle"`
	Icon     string          `json:"icon"`
	Options  []optionPayload `json:"options"`
}

type coveragePayload struct {
	CoveredProductIDs     []string `json:"coveredProductIds"`
	UnavailableProductIDs []string `json:"unavailableProductIds"`
	HasPartialCoverage    bool     `json:"hasPartialCoverage"`
}

type rulePayload struct {
	ID                    string   `json:"id"`
	Zone                  string   `json:"zona"`
	Coverage              []string `json:"zipcodes"`
	FreeShipping          bool     `json:"envioGratis"`
	FreeShippingMinAmount float64  `json:"envioGratisMontoMinimo,omitempty"`
	BasePrice             float64  `json:"precioBase"`
	Carriers              int      `json:"opcionesMensajeria"`
}

func buildQuotePayload(result services.ShippingQuoteResult) quotePayload {
	payload := quotePayload{
		Options: make([]optionPayload, 0, len(result.Options)),
		Groups:  make([]groupPayload, 0, len(result.Groups)),
		Coverage: coveragePayload{
			CoveredProductIDs:     result.Coverage.CoveredProductIDs,
			UnavailableProductIDs: result.Coverage.UnavailableProductIDs,
			HasPartialCoverage:    result.Coverage.HasPartialCoverage,
		},
	}
	for _, option := range result.Options {
		payload.Options = append(payload.Options, buildOptionPayload(option))
	}
	for _, group := range result.Groups {
		groupOut := groupPayload{
			ID:       group.ID,
			Title:    group.Title,
			Subtitle: group.Subtitle,
			Icon:     group.Icon,
			Options:  make([]optionPayload, 0, len(group.Options)),
		}
		for _, option := range group.Options {
			groupOut.Options = append(groupOut.Options, buildOptionPayload(option))
		}
		payload.Groups = append(payload.Groups, groupOut)
	}
	return payload
}

func buildOptionPayload(option domain.ShippingOption) optionPayload {
	out := optionPayload{
		ID:               option.ID,
		RuleID:           option.RuleID,
		Zone:             option.Zone,
		ZoneType:         option.ZoneType,
		Carrier:          option.Carrier,
		Label:            option.Label,
		TotalCost:        option.TotalCost,
		CalculatedCost:   option.TotalCost,
		IsFree:           option.IsFree,
		FreeReason:       option.FreeReason,
		MinDays:          option.MinDays,
		MaxDays:          option.MaxDays,
		DeliveryTimeText: option.DeliveryTimeText,
		CoversAllItems:   option.CoversAllItems,
		Packages:         make([]packagePayload, 0, len(option.Packages)),
	}
	for _, pkg := range option.Packages {
		pkgOut := packagePayload{
			TotalWeight:   pkg.TotalWeight,
			TotalQuantity: pkg.TotalQuantity,
			ExceedsLimits: pkg.ExceedsLimits,
			BaseCost:      pkg.BaseCost,
			ExtraCost:     pkg.ExtraCost,
			TotalCost:     pkg.TotalCost,
			IsFree:        pkg.IsFree,
			Items:         make([]packageItemPayload, 0, len(pkg.Items)),
		}
		for _, item := range pkg.Items {
			pkgOut.Items = append(pkgOut.Items, packageItemPayload{
				ProductID: item.Product.ID,
				Name:      item.Product.Name,
				Quantity:  item.Quantity,
			})
		}
		out.Packages = append(out.Packages, pkgOut)
	}
	return out
}

func buildRulePayload(rule domain.ShippingRule) rulePayload {
	return rulePayload{
		ID:                    rule.ID,
		Zone:                  rule.Zone,
		Coverage:              rule.Coverage,
		FreeShipping:          rule.FreeShipping,
		FreeShippingMinAmount: rule.FreeShippingMinAmount,
		BasePrice:             rule.BasePrice,
		Carriers:              len(rule.CarrierOptions),
	}
}
