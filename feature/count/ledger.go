package count

import "cycle-count/feature/count/models"

// Partition splits the expectation list by observation status.
type Partition struct {
	// Unscanned holds expectation entries not yet observed, identifier-scan
	// items first so operator attention goes to unit scans.
	Unscanned []models.Item `json:"unscanned"`
	// Scanned holds expectation entries already observed.
	Scanned []models.Item `json:"scanned"`
	// Overage holds observed identifiers with no expectation entry.
	Overage []string `json:"overage"`
}

// PartitionItems derives the partition from the session's current state.
// Within each bucket, expectation-list order is preserved.
func PartitionItems(s *models.Session) Partition {
	p := Partition{
		Unscanned: []models.Item{},
		Scanned:   []models.Item{},
		Overage:   []string{},
	}

	// Two passes keep the ordering stable: scan-mode items first, aggregate
	// items after.
	for _, item := range s.Items {
		if !s.Observed.Has(item.Identifier) && item.Mode == models.ModeIdentifierScan {
			p.Unscanned = append(p.Unscanned, item)
		}
	}
	for _, item := range s.Items {
		if !s.Observed.Has(item.Identifier) && item.Mode == models.ModeAggregateQuantity {
			p.Unscanned = append(p.Unscanned, item)
		}
	}

	for _, item := range s.Items {
		if s.Observed.Has(item.Identifier) {
			p.Scanned = append(p.Scanned, item)
		}
	}

	expected := make(map[string]struct{}, len(s.Items))
	for _, item := range s.Items {
		expected[item.Identifier] = struct{}{}
	}
	for _, id := range s.Observed.Values() {
		if _, ok := expected[id]; !ok {
			p.Overage = append(p.Overage, id)
		}
	}

	return p
}

// Progress reports expectation coverage. Overage never counts toward
// progress.
type Progress struct {
	Scanned int `json:"scanned"`
	Total   int `json:"total"`
}

// CountProgress returns scanned-expected over total-expected counts.
func CountProgress(s *models.Session) Progress {
	p := Progress{Total: len(s.Items)}
	for _, item := range s.Items {
		if s.Observed.Has(item.Identifier) {
			p.Scanned++
		}
	}
	return p
}

// Summary aggregates the discrepancy list for reporting.
type Summary struct {
	Shortages    int `json:"shortages"`
	Overages     int `json:"overages"`
	AutoResolved int `json:"auto_resolved"`
	// NetVariance is overage value minus shortage value. Auto-resolved
	// entries are excluded: an explained discrepancy is no longer loss or
	// gain, though it stays visible for audit.
	NetVariance float64 `json:"net_variance"`
}

// Summarize builds the financial rollup from the discrepancy list.
func Summarize(s *models.Session) Summary {
	var sum Summary
	for _, d := range s.Discrepancies {
		switch d.Type {
		case models.TypeShortage:
			sum.Shortages++
		case models.TypeOverage:
			sum.Overages++
		}
		if d.AutoResolved {
			sum.AutoResolved++
			continue
		}
		switch d.Type {
		case models.TypeShortage:
			sum.NetVariance -= d.Price
		case models.TypeOverage:
			sum.NetVariance += d.Price
		}
	}
	return sum
}
