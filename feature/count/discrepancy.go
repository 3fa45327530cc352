package count

import (
	"context"
	"fmt"

	"cycle-count/feature/count/models"
)

// ItemInfo is the catalog metadata for an identifier.
type ItemInfo struct {
	SKU   string
	Name  string
	Price float64
}

// Lookup resolves an identifier to catalog metadata. The boolean reports
// whether the identifier is known; a miss is a defined fallback, not an
// error.
type Lookup interface {
	Lookup(ctx context.Context, identifier string) (ItemInfo, bool, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, identifier string) (ItemInfo, bool, error)

func (f LookupFunc) Lookup(ctx context.Context, identifier string) (ItemInfo, bool, error) {
	return f(ctx, identifier)
}

// ComputeDiscrepancies derives the discrepancy set from the expectation
// list and the observed set. Shortages come first, then overages; within
// each group input order is preserved. An identifier that is both expected
// and observed yields no discrepancy.
//
// The function is pure with respect to the session: it never mutates s.
func ComputeDiscrepancies(ctx context.Context, s *models.Session, lookup Lookup) ([]models.Discrepancy, error) {
	out := make([]models.Discrepancy, 0)

	for _, item := range s.Items {
		if s.Observed.Has(item.Identifier) {
			continue
		}
		out = append(out, models.Discrepancy{
			Identifier: item.Identifier,
			SKU:        item.SKU,
			Name:       item.Name,
			Price:      item.Price,
			Type:       models.TypeShortage,
		})
	}

	expected := make(map[string]struct{}, len(s.Items))
	for _, item := range s.Items {
		expected[item.Identifier] = struct{}{}
	}

	for _, id := range s.Observed.Values() {
		if _, ok := expected[id]; ok {
			continue
		}
		d := models.Discrepancy{
			Identifier: id,
			Name:       unknownItemName,
			Type:       models.TypeOverage,
		}
		info, found, err := lookup.Lookup(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("catalog lookup for %s: %w", id, err)
		}
		if found {
			d.SKU = info.SKU
			d.Name = info.Name
			d.Price = info.Price
		}
		out = append(out, d)
	}

	return out, nil
}
