package services

import "github.com/cactilia/api/internal/domain"

// CheckoutPolicy carries the checkout-level pricing parameters.
type CheckoutPolicy struct {
	// TaxRate is the flat rate already included in catalog prices.
	TaxRate float64
	// MinFreeShipping is the tax-inclusive order amount granting free shipping.
	// Zero disables the threshold.
	MinFreeShipping float64
}

// CheckoutTotals is the order summary shown at checkout. Prices are
// tax-inclusive, so the tax portion is backed out of the total rather than
// added on top: taxes = total − total/(1+rate).
type CheckoutTotals struct {
	Subtotal       float64
	Taxes          float64
	Shipping       float64
	Total          float64
	IsFreeShipping bool
}

// ComputeCheckoutTotals derives the order summary from the cart and the
// selected shipping cost. Shipping is not taxed.
func ComputeCheckoutTotals(items []domain.CartItem, shippingCost float64, policy CheckoutPolicy) CheckoutTotals {
	itemsTotal := domain.CartSubtotal(items)

	freeShipping := policy.MinFreeShipping > 0 && itemsTotal >= policy.MinFreeShipping
	shipping := shippingCost
	if freeShipping || shipping < 0 {
		shipping = 0
	}

	subtotal := itemsTotal
	taxes := 0.0
	if policy.TaxRate > 0 {
		subtotal = itemsTotal / (1 + policy.TaxRate)
		taxes = itemsTotal - subtotal
	}

	return CheckoutTotals{
		Subtotal:       subtotal,
		Taxes:          taxes,
		Shipping:       shipping,
		Total:          itemsTotal + shipping,
		IsFreeShipping: freeShipping,
	}
}
