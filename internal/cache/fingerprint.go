package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// Fingerprint hashes a dataset together with any settings that change report
// output, so cache entries expire as soon as either changes.
func Fingerprint(ds *domain.Dataset, settings map[string]string) string {
	h := sha1.New()

	for _, s := range ds.Sales {
		fmt.Fprintf(h, "s|%s|%s|%g|%g\n", s.Date.Format("2006-01-02"), s.ProductID, s.QuantitySold, s.Revenue)
	}
	for _, s := range ds.Inventory {
		fmt.Fprintf(h, "i|%s|%s|%g\n", s.Date.Format("2006-01-02"), s.ProductID, s.CurrentStock)
	}
	for _, p := range ds.Products {
		fmt.Fprintf(h, "p|%s|%s|%s|%s|%g\n", p.ProductID, p.ProductName, p.Category, p.Supplier, p.CostPrice)
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+settings[k])
	}
	fmt.Fprintf(h, "cfg|%s\n", strings.Join(parts, "|"))

	return hex.EncodeToString(h.Sum(nil))
}
