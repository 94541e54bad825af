package shipping

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/cactilia/api/internal/domain"
)

// DeliveryEstimate is the normalised delivery window for one shipping option.
type DeliveryEstimate struct {
	MinDays *int
	MaxDays *int
	// Text is the human-readable delivery window shown to the shopper.
	Text string
}

var (
	dayRangePattern  = regexp.MustCompile(`(\d+)\s*(?:-|a|–)\s*(\d+)`)
	singleDayPattern = regexp.MustCompile(`(\d+)`)
)

// EstimateDelivery resolves the delivery window for a rule. Rule-level values
// come first; when carrier options are present the first entry overrides them
// (the catalog keeps options sorted cheapest-first). When no numeric bounds
// exist but a free-text description does, a "N-M" or "N" day pattern is
// extracted; extraction failure leaves the bounds unset, never an error.
// An inverted window raises the maximum to the minimum.
func EstimateDelivery(rule domain.ShippingRule) DeliveryEstimate {
	estimate := DeliveryEstimate{
		MinDays: cloneDays(rule.MinDays),
		MaxDays: cloneDays(rule.MaxDays),
		Text:    rule.DeliveryText,
	}

	if len(rule.CarrierOptions) > 0 {
		first := rule.CarrierOptions[0]
		if first.MinDays != nil {
			estimate.MinDays = cloneDays(first.MinDays)
		}
		if first.MaxDays != nil {
			estimate.MaxDays = cloneDays(first.MaxDays)
		}
		if first.DeliveryText != "" {
			estimate.Text = first.DeliveryText
		}
	}

	if estimate.MinDays == nil && estimate.MaxDays == nil && estimate.Text != "" {
		estimate.MinDays, estimate.MaxDays = parseDaysFromText(estimate.Text)
	}

	// Mirror a single known bound so the window is always two-sided.
	if estimate.MinDays == nil && estimate.MaxDays != nil {
		estimate.MinDays = cloneDays(estimate.MaxDays)
	}
	if estimate.MaxDays == nil && estimate.MinDays != nil {
		estimate.MaxDays = cloneDays(estimate.MinDays)
	}

	if estimate.MinDays != nil && estimate.MaxDays != nil && *estimate.MaxDays < *estimate.MinDays {
		estimate.MaxDays = cloneDays(estimate.MinDays)
	}

	if estimate.Text == "" && estimate.MinDays != nil && estimate.MaxDays != nil {
		estimate.Text = formatDeliveryWindow(*estimate.MinDays, *estimate.MaxDays)
	}

	return estimate
}

// parseDaysFromText extracts "N-M" or single "N" day bounds from a free-text
// delivery description.
func parseDaysFromText(text string) (*int, *int) {
	if match := dayRangePattern.FindStringSubmatch(text); match != nil {
		lo, errLo := strconv.Atoi(match[1])
		hi, errHi := strconv.Atoi(match[2])
		if errLo == nil && errHi == nil {
			return &lo, &hi
		}
	}
	if match := singleDayPattern.FindStringSubmatch(text); match != nil {
		if days, err := strconv.Atoi(match[1]); err == nil {
			return &days, &days
		}
	}
	return nil, nil
}

func formatDeliveryWindow(minDays, maxDays int) string {
	if minDays == maxDays {
		if minDays == 1 {
			return "1 día"
		}
		return fmt.Sprintf("%d días", minDays)
	}
	return fmt.Sprintf("%d-%d días", minDays, maxDays)
}

func cloneDays(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
