package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cactilia/api/internal/domain"
	"github.com/cactilia/api/internal/platform/httpx"
	"github.com/cactilia/api/internal/services"
)

const maxTotalsBodySize = 64 * 1024

// CheckoutHandlers exposes the checkout totals endpoint.
type CheckoutHandlers struct {
	policy services.CheckoutPolicy
}

// NewCheckoutHandlers constructs handlers applying the given checkout policy.
func NewCheckoutHandlers(policy services.CheckoutPolicy) *CheckoutHandlers {
	return &CheckoutHandlers{policy: policy}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/totals", h.totals)
}

type checkoutTotalsRequest struct {
	Items        []domain.CartItemInput `json:"items"`
	ShippingCost float64                `json:"shippingCost"`
}

type checkoutTotalsResponse struct {
	Subtotal       float64 `json:"subtotal"`
	Taxes          float64 `json:"taxes"`
	Shipping       float64 `json:"shipping"`
	Total          float64 `json:"total"`
	IsFreeShipping bool    `json:"isFreeShipping"`
}

func (h *CheckoutHandlers) totals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checkoutTotalsRequest
	if err := decodeJSONBody(r, maxTotalsBodySize, &req); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	totals := services.ComputeCheckoutTotals(domain.NormalizeCartItems(req.Items), req.ShippingCost, h.policy)
	writeJSON(w, http.StatusOK, checkoutTotalsResponse{
		Subtotal:       totals.Subtotal,
		Taxes:          totals.Taxes,
		Shipping:       totals.Shipping,
		Total:          totals.Total,
		IsFreeShipping: totals.IsFreeShipping,
	})
}
