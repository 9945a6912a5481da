// Package policy holds the registrar-imposed minimum registration terms per
// TLD. The table is static: it is registry policy, not server state.
package policy

import (
	"domcart/internal/domain"
)

// minYearsByTLD lists TLDs whose registries require more than one year per
// registration. Anything absent defaults to one year.
var minYearsByTLD = map[string]int{
	"ai": 2,
}

const defaultMinYears = 1

// MinYears returns the minimum registration period in years for a lowercased
// TLD string.
func MinYears(tld string) int {
	if min, ok := minYearsByTLD[tld]; ok {
		return min
	}
	return defaultMinYears
}

// MinYearsForDomain looks up the minimum for a fully qualified domain name.
func MinYearsForDomain(domainName string) int {
	return MinYears(domain.TLD(domainName))
}

// ClampPeriod raises an item's registration period to its TLD minimum.
// Violations are corrected, never rejected; the second return reports
// whether a correction happened.
func ClampPeriod(item domain.CartItem) (domain.CartItem, bool) {
	min := MinYearsForDomain(item.DomainName)
	if item.RegistrationPeriod >= min {
		return item, false
	}
	item.RegistrationPeriod = min
	return item, true
}

// ClampAll applies ClampPeriod to every item in place and reports whether
// any item was corrected.
func ClampAll(items []domain.CartItem) bool {
	corrected := false
	for i := range items {
		clamped, changed := ClampPeriod(items[i])
		items[i] = clamped
		corrected = corrected || changed
	}
	return corrected
}
