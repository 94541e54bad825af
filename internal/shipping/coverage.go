// Package shipping implements the rule resolution, bin packing, costing,
// delivery estimation, and presentation grouping behind shipping quotes.
// Everything here is pure computation over in-memory values: no I/O, no
// shared state, inputs are never mutated.
package shipping

import (
	"strconv"
	"strings"

	"github.com/cactilia/api/internal/domain"
)

// NationalCoverageToken marks a rule as covering every national address.
const NationalCoverageToken = "nacional"

const stateTokenPrefix = "estado_"

// RuleCoversAddress reports whether the rule's declared coverage matches the
// destination. It fails closed: a rule without coverage tokens or an address
// without postal code and state never matches. Checks are OR'd; order only
// short-circuits.
func RuleCoversAddress(rule domain.ShippingRule, addr domain.Address) bool {
	if len(rule.Coverage) == 0 {
		return false
	}
	zip := domain.NormalizePostalCode(addr.PostalCode)
	state := strings.ToUpper(strings.TrimSpace(addr.State))
	if zip == "" && state == "" {
		return false
	}

	for _, token := range rule.Coverage {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if strings.EqualFold(token, NationalCoverageToken) {
			return true
		}
		if zip != "" && domain.NormalizePostalCode(token) == zip {
			return true
		}
		if state != "" && matchesStateToken(token, state) {
			return true
		}
		if zip != "" && zipInRange(token, zip) {
			return true
		}
	}
	return false
}

func matchesStateToken(token, state string) bool {
	lower := strings.ToLower(token)
	if !strings.HasPrefix(lower, stateTokenPrefix) {
		return false
	}
	code := strings.ToUpper(strings.TrimSpace(token[len(stateTokenPrefix):]))
	return code != "" && code == state
}

// zipInRange evaluates "<start>-<end>" tokens with inclusive bounds. Malformed
// tokens are skipped, never an error.
func zipInRange(token, zip string) bool {
	start, end, found := strings.Cut(token, "-")
	if !found {
		return false
	}
	lo, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		return false
	}
	hi, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil {
		return false
	}
	value, err := strconv.Atoi(zip)
	if err != nil {
		return false
	}
	return value >= lo && value <= hi
}
