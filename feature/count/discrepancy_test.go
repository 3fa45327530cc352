package count

import (
	"context"
	"errors"
	"testing"
	"time"

	"cycle-count/feature/count/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLookup(known map[string]ItemInfo) Lookup {
	return LookupFunc(func(ctx context.Context, identifier string) (ItemInfo, bool, error) {
		info, ok := known[identifier]
		return info, ok, nil
	})
}

func TestComputeDiscrepancies_Shortage(t *testing.T) {
	s := models.NewSession([]models.Item{
		{Identifier: "A", SKU: "SKU-A", Name: "Alpha", Price: 10, Mode: models.ModeIdentifierScan},
		{Identifier: "B", SKU: "SKU-B", Name: "Beta", Price: 20, Mode: models.ModeIdentifierScan},
	}, time.Now())
	s.Observed.Add("A")

	out, err := ComputeDiscrepancies(context.Background(), s, staticLookup(nil))
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].Identifier)
	assert.Equal(t, models.TypeShortage, out[0].Type)
	assert.Equal(t, "Beta", out[0].Name)
	assert.Equal(t, 20.0, out[0].Price)
}

func TestComputeDiscrepancies_OverageWithLookup(t *testing.T) {
	s := models.NewSession([]models.Item{
		{Identifier: "A", SKU: "SKU-A", Name: "Alpha", Mode: models.ModeIdentifierScan},
		{Identifier: "B", SKU: "SKU-B", Name: "Beta", Mode: models.ModeIdentifierScan},
	}, time.Now())
	s.Observed.Add("A")
	s.Observed.Add("B")
	s.Observed.Add("C")

	out, err := ComputeDiscrepancies(context.Background(), s, staticLookup(map[string]ItemInfo{
		"C": {SKU: "SKU-C", Name: "Gamma", Price: 30},
	}))
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "C", out[0].Identifier)
	assert.Equal(t, models.TypeOverage, out[0].Type)
	assert.Equal(t, "Gamma", out[0].Name)
	assert.Equal(t, 30.0, out[0].Price)
}

func TestComputeDiscrepancies_OverageLookupMissUsesSentinel(t *testing.T) {
	s := models.NewSession([]models.Item{
		{Identifier: "A", Name: "Alpha", Mode: models.ModeIdentifierScan},
	}, time.Now())
	s.Observed.Add("A")
	s.Observed.Add("GHOST")

	out, err := ComputeDiscrepancies(context.Background(), s, staticLookup(nil))
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "Unknown item", out[0].Name)
	assert.Equal(t, 0.0, out[0].Price)
	assert.Empty(t, out[0].SKU)
}

func TestComputeDiscrepancies_PartitionIsExact(t *testing.T) {
	// Property: shortages and overages partition exactly; no identifier in
	// both, every unobserved expectation in exactly one shortage.
	s := models.NewSession([]models.Item{
		{Identifier: "A", Name: "Alpha", Mode: models.ModeIdentifierScan},
		{Identifier: "B", Name: "Beta", Mode: models.ModeIdentifierScan},
		{Identifier: "C", Name: "Gamma", Mode: models.ModeIdentifierScan},
	}, time.Now())
	s.Observed.Add("B")
	s.Observed.Add("X")
	s.Observed.Add("Y")

	out, err := ComputeDiscrepancies(context.Background(), s, staticLookup(nil))
	require.NoError(t, err)

	seen := make(map[string]models.DiscrepancyType)
	for _, d := range out {
		_, dup := seen[d.Identifier]
		assert.False(t, dup, "identifier %s appears in more than one discrepancy", d.Identifier)
		seen[d.Identifier] = d.Type
	}

	assert.Equal(t, models.TypeShortage, seen["A"])
	assert.Equal(t, models.TypeShortage, seen["C"])
	assert.Equal(t, models.TypeOverage, seen["X"])
	assert.Equal(t, models.TypeOverage, seen["Y"])
	// B is both expected and observed: no discrepancy.
	_, ok := seen["B"]
	assert.False(t, ok)

	// Shortages ordered before overages, input order preserved within each.
	require.Len(t, out, 4)
	assert.Equal(t, "A", out[0].Identifier)
	assert.Equal(t, "C", out[1].Identifier)
	assert.Equal(t, "X", out[2].Identifier)
	assert.Equal(t, "Y", out[3].Identifier)
}

func TestComputeDiscrepancies_LookupFailure(t *testing.T) {
	s := models.NewSession(nil, time.Now())
	s.Observed.Add("X")

	failing := LookupFunc(func(ctx context.Context, identifier string) (ItemInfo, bool, error) {
		return ItemInfo{}, false, errors.New("catalog down")
	})

	out, err := ComputeDiscrepancies(context.Background(), s, failing)
	assert.Error(t, err)
	assert.Nil(t, out)
}
