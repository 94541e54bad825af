// Package repositories declares the persistence contracts consumed by the
// service layer. Implementations live in backend-specific subpackages.
package repositories

import (
	"context"

	"github.com/cactilia/api/internal/domain"
)

// ShippingRuleRepository loads the shipping rule catalog.
type ShippingRuleRepository interface {
	// Active returns only rules flagged activo. Retry policy for transient
	// backend failures belongs to callers of this layer, not to the quote
	// computation above it.
	Active(ctx context.Context) ([]domain.ShippingRule, error)
}
