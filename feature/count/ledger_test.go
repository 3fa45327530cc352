package count

import (
	"testing"
	"time"

	"cycle-count/feature/count/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(status models.Status) *models.Session {
	s := models.NewSession([]models.Item{
		{Identifier: "IMEI-100", SKU: "PHONE-X", Name: "Phone X", Price: 799, Mode: models.ModeIdentifierScan},
		{Identifier: "IMEI-101", SKU: "PHONE-X", Name: "Phone X", Price: 799, Mode: models.ModeIdentifierScan},
		{Identifier: "CABLE-BIN", SKU: "CABLE-1M", Name: "1m Cable", Price: 9.5, Mode: models.ModeAggregateQuantity},
		{Identifier: "CASE-BIN", SKU: "CASE-STD", Name: "Standard Case", Price: 19, Mode: models.ModeAggregateQuantity},
	}, time.Now())
	s.Status = status
	return s
}

func TestScanCommand_DuplicateIsSurfacedNotDropped(t *testing.T) {
	engine := NewEngine(testSession(models.StatusInProgress))
	now := time.Now()

	first, snap, err := engine.Apply(ScanCommand{Identifier: "IMEI-100"}, now)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.False(t, first.Duplicate)
	assert.Equal(t, "Phone X", first.ItemName)

	second, snap, err := engine.Apply(ScanCommand{Identifier: "IMEI-100"}, now)
	require.NoError(t, err)
	require.NotNil(t, snap, "a duplicate still updates the last action and persists")
	assert.True(t, second.Duplicate)

	// Exactly one membership addition.
	assert.Equal(t, 1, snap.Observed.Len())
}

func TestScanCommand_UnknownIdentifierStillObserved(t *testing.T) {
	engine := NewEngine(testSession(models.StatusInProgress))

	outcome, snap, err := engine.Apply(ScanCommand{Identifier: "STRAY-1"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Unknown item", outcome.ItemName)
	assert.True(t, snap.Observed.Has("STRAY-1"))
	require.NotNil(t, snap.LastAction)
	assert.Equal(t, "Unknown item", snap.LastAction.ItemName)
}

func TestScanCommand_EmptyIdentifierRejected(t *testing.T) {
	engine := NewEngine(testSession(models.StatusInProgress))

	_, snap, err := engine.Apply(ScanCommand{}, time.Now())
	assert.ErrorIs(t, err, ErrEmptyIdentifier)
	assert.Nil(t, snap)
}

func TestScanCommand_WrongState(t *testing.T) {
	engine := NewEngine(testSession(models.StatusReconciling))

	_, _, err := engine.Apply(ScanCommand{Identifier: "IMEI-100"}, time.Now())
	var state *StateError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, models.StatusReconciling, state.Status)
}

func TestSetQuantityCommand_PositiveObservesRepresentative(t *testing.T) {
	engine := NewEngine(testSession(models.StatusInProgress))

	outcome, snap, err := engine.Apply(SetQuantityCommand{SKU: "CABLE-1M", Count: 3}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "1m Cable", outcome.ItemName)
	assert.Equal(t, "CABLE-BIN", outcome.Identifier)
	assert.True(t, snap.Observed.Has("CABLE-BIN"))
	assert.Equal(t, 3, snap.ItemByIdentifier("CABLE-BIN").ManualCount)
}

func TestSetQuantityCommand_ZeroNeedsConfirmation(t *testing.T) {
	engine := NewEngine(testSession(models.StatusInProgress))

	_, _, err := engine.Apply(SetQuantityCommand{SKU: "CABLE-1M", Count: 3}, time.Now())
	require.NoError(t, err)

	// Unconfirmed zero: no effect, caller must re-prompt.
	outcome, snap, err := engine.Apply(SetQuantityCommand{SKU: "CABLE-1M", Count: 0}, time.Now())
	require.NoError(t, err)
	assert.True(t, outcome.NeedsConfirmation)
	assert.Nil(t, snap)
	assert.True(t, engine.Snapshot().Observed.Has("CABLE-BIN"))

	// Confirmed zero: the SKU moves back to the unscanned bucket.
	outcome, snap, err = engine.Apply(SetQuantityCommand{SKU: "CABLE-1M", Count: 0, ConfirmZero: true}, time.Now())
	require.NoError(t, err)
	assert.False(t, outcome.NeedsConfirmation)
	assert.False(t, snap.Observed.Has("CABLE-BIN"))
	assert.Equal(t, 0, snap.ItemByIdentifier("CABLE-BIN").ManualCount)
}

func TestSetQuantityCommand_ZeroThenPositiveRestoresWithoutSideEffects(t *testing.T) {
	engine := NewEngine(testSession(models.StatusInProgress))
	now := time.Now()

	_, _, err := engine.Apply(SetQuantityCommand{SKU: "CASE-STD", Count: 5}, now)
	require.NoError(t, err)
	_, _, err = engine.Apply(SetQuantityCommand{SKU: "CABLE-1M", Count: 3}, now)
	require.NoError(t, err)

	before := CountProgress(engine.Snapshot())

	_, _, err = engine.Apply(SetQuantityCommand{SKU: "CABLE-1M", Count: 0, ConfirmZero: true}, now)
	require.NoError(t, err)
	assert.Equal(t, before.Scanned-1, CountProgress(engine.Snapshot()).Scanned)

	_, snap, err := engine.Apply(SetQuantityCommand{SKU: "CABLE-1M", Count: 3}, now)
	require.NoError(t, err)
	assert.Equal(t, before.Scanned, CountProgress(snap).Scanned)

	// The other SKU's state is untouched.
	assert.True(t, snap.Observed.Has("CASE-BIN"))
	assert.Equal(t, 5, snap.ItemByIdentifier("CASE-BIN").ManualCount)
}

func TestSetQuantityCommand_Validation(t *testing.T) {
	engine := NewEngine(testSession(models.StatusInProgress))

	_, _, err := engine.Apply(SetQuantityCommand{SKU: "CABLE-1M", Count: -1}, time.Now())
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	// PHONE-X exists but is identifier-scan, not aggregate.
	_, _, err = engine.Apply(SetQuantityCommand{SKU: "PHONE-X", Count: 2}, time.Now())
	assert.ErrorIs(t, err, ErrUnknownSKU)

	_, _, err = engine.Apply(SetQuantityCommand{SKU: "NOPE", Count: 2}, time.Now())
	assert.ErrorIs(t, err, ErrUnknownSKU)
}

func TestPartitionItems_OrderingAndOverage(t *testing.T) {
	s := testSession(models.StatusInProgress)
	s.Observed.Add("IMEI-100")
	s.Observed.Add("STRAY-1")

	p := PartitionItems(s)

	// Scan-mode items first in the unscanned bucket, aggregate items after.
	require.Len(t, p.Unscanned, 3)
	assert.Equal(t, "IMEI-101", p.Unscanned[0].Identifier)
	assert.Equal(t, "CABLE-BIN", p.Unscanned[1].Identifier)
	assert.Equal(t, "CASE-BIN", p.Unscanned[2].Identifier)

	require.Len(t, p.Scanned, 1)
	assert.Equal(t, "IMEI-100", p.Scanned[0].Identifier)

	assert.Equal(t, []string{"STRAY-1"}, p.Overage)
}

func TestCountProgress_OverageDoesNotCount(t *testing.T) {
	s := testSession(models.StatusInProgress)
	s.Observed.Add("IMEI-100")
	s.Observed.Add("STRAY-1")
	s.Observed.Add("STRAY-2")

	p := CountProgress(s)
	assert.Equal(t, 1, p.Scanned)
	assert.Equal(t, 4, p.Total)
}

func TestSummarize_AutoResolvedExcludedFromVariance(t *testing.T) {
	s := testSession(models.StatusReconciling)
	s.Discrepancies = []models.Discrepancy{
		{Identifier: "IMEI-100", Price: 799, Type: models.TypeShortage},
		{Identifier: "IMEI-101", Price: 799, Type: models.TypeShortage, AutoResolved: true, Reason: models.ReasonSold},
		{Identifier: "STRAY-1", Price: 19, Type: models.TypeOverage},
	}

	sum := Summarize(s)
	assert.Equal(t, 2, sum.Shortages)
	assert.Equal(t, 1, sum.Overages)
	assert.Equal(t, 1, sum.AutoResolved)
	assert.InDelta(t, -780.0, sum.NetVariance, 1e-9)
}
