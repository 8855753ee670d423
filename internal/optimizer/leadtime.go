package optimizer

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// DefaultSupplierLeadTimes is the supplier lead-time table in days.
var DefaultSupplierLeadTimes = map[string]int{
	"Supplier A": 7,
	"Supplier B": 5,
	"Supplier C": 10,
	"Supplier D": 3,
}

// LeadTimes maps suppliers to lead times. A zero fallback rejects unknown suppliers.
type LeadTimes struct {
	table    map[string]int
	fallback int
}

// NewLeadTimes builds a lookup table. Entries in overrides replace or extend the defaults.
func NewLeadTimes(overrides map[string]int, fallback int) LeadTimes {
	table := make(map[string]int, len(DefaultSupplierLeadTimes)+len(overrides))
	for supplier, days := range DefaultSupplierLeadTimes {
		table[supplier] = days
	}
	for supplier, days := range overrides {
		supplier = strings.TrimSpace(supplier)
		if supplier == "" || days <= 0 {
			continue
		}
		table[supplier] = days
	}
	if fallback < 0 {
		fallback = 0
	}
	return LeadTimes{table: table, fallback: fallback}
}

// DefaultLeadTimes returns the fixed table with unknown suppliers rejected.
func DefaultLeadTimes() LeadTimes {
	return NewLeadTimes(nil, 0)
}

// IsZero reports whether the table was never built.
func (l LeadTimes) IsZero() bool {
	return l.table == nil
}

// Lookup returns the lead time for supplier.
func (l LeadTimes) Lookup(supplier string) (int, error) {
	if days, ok := l.table[strings.TrimSpace(supplier)]; ok {
		return days, nil
	}
	if l.fallback > 0 {
		return l.fallback, nil
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrUnknownSupplier, supplier)
}
