package count

import (
	"context"
	"testing"
	"time"

	"cycle-count/core/store"
	"cycle-count/feature/count/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource []models.Item

func (s staticSource) ListExpected(context.Context) ([]models.Item, error) {
	return s, nil
}

var testExpectation = staticSource{
	{Identifier: "IMEI-100", SKU: "PHONE-X", Name: "Phone X", Price: 799, Mode: models.ModeIdentifierScan},
	{Identifier: "IMEI-101", SKU: "PHONE-X", Name: "Phone X", Price: 799, Mode: models.ModeIdentifierScan},
	{Identifier: "CABLE-BIN", SKU: "CABLE-1M", Name: "1m Cable", Price: 9.5, Mode: models.ModeAggregateQuantity},
}

func newTestService(t *testing.T, st store.Store, oracle Oracle) *Service {
	t.Helper()
	if oracle == nil {
		oracle = OracleFunc(func(context.Context, string) (models.Reason, bool, error) {
			return "", false, nil
		})
	}
	svc, err := NewService(context.Background(), zap.NewNop(), st, staticLookup(nil), testExpectation, oracle)
	require.NoError(t, err)
	return svc
}

func TestService_CreatesSessionWhenStoreEmpty(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(t, st, nil)

	state := svc.State()
	assert.Equal(t, models.StatusPending, state.Session.Status)
	assert.Len(t, state.Session.Items, 3)

	// The fresh session is persisted immediately.
	payload, err := st.Load(context.Background())
	require.NoError(t, err)
	stored, err := models.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, state.Session.ID, stored.ID)
}

func TestService_EveryMutationPersists(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestService(t, st, nil)

	storedVersion := func() uint64 {
		payload, err := st.Load(ctx)
		require.NoError(t, err)
		s, err := models.Decode(payload)
		require.NoError(t, err)
		return s.Version
	}

	require.NoError(t, svc.Start(ctx))
	after := storedVersion()

	_, err := svc.Scan(ctx, "IMEI-100")
	require.NoError(t, err)
	assert.Equal(t, after+1, storedVersion())

	_, err = svc.SetQuantity(ctx, "CABLE-1M", 1, false)
	require.NoError(t, err)
	assert.Equal(t, after+2, storedVersion())

	require.NoError(t, svc.Submit(ctx))
	assert.Equal(t, after+3, storedVersion())
}

func TestService_UnconfirmedZeroDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestService(t, st, nil)
	require.NoError(t, svc.Start(ctx))

	payload, err := st.Load(ctx)
	require.NoError(t, err)
	before, err := models.Decode(payload)
	require.NoError(t, err)

	outcome, err := svc.SetQuantity(ctx, "CABLE-1M", 0, false)
	require.NoError(t, err)
	assert.True(t, outcome.NeedsConfirmation)

	payload, err = st.Load(ctx)
	require.NoError(t, err)
	after, err := models.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
}

func TestService_ResumesUnfinishedSession(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	svc := newTestService(t, st, nil)
	require.NoError(t, svc.Start(ctx))
	_, err := svc.Scan(ctx, "IMEI-100")
	require.NoError(t, err)
	originalID := svc.State().Session.ID

	// Simulated restart over the same store.
	restarted := newTestService(t, st, nil)
	state := restarted.State()
	assert.Equal(t, originalID, state.Session.ID)
	assert.Equal(t, models.StatusInProgress, state.Session.Status)
	assert.True(t, state.Session.Observed.Has("IMEI-100"))
}

func TestService_ReplacesCompletedSessionFromPreviousDay(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	yesterday := time.Now().AddDate(0, 0, -1)
	old := models.NewSession(testExpectation, yesterday)
	old.Status = models.StatusCompleted
	old.CompletedAt = &yesterday
	payload, err := old.Encode()
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, payload))

	svc := newTestService(t, st, nil)
	state := svc.State()
	assert.NotEqual(t, old.ID, state.Session.ID)
	assert.Equal(t, models.StatusPending, state.Session.Status)
}

func TestService_KeepsCompletedSessionSameDay(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	old := models.NewSession(testExpectation, time.Now())
	old.Status = models.StatusCompleted
	now := time.Now()
	old.CompletedAt = &now
	payload, err := old.Encode()
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, payload))

	svc := newTestService(t, st, nil)
	assert.Equal(t, old.ID, svc.State().Session.ID)
	assert.Equal(t, models.StatusCompleted, svc.State().Session.Status)
}

func TestService_CorruptRecordStartsFresh(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Save(ctx, []byte("{not json")))

	svc := newTestService(t, st, nil)
	assert.Equal(t, models.StatusPending, svc.State().Session.Status)
}

func TestService_AutoReconcilePersistsAppliedResult(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	oracle := OracleFunc(func(_ context.Context, identifier string) (models.Reason, bool, error) {
		return models.ReasonSold, true, nil
	})
	svc := newTestService(t, st, oracle)

	require.NoError(t, svc.Start(ctx))
	_, err := svc.Scan(ctx, "IMEI-100")
	require.NoError(t, err)
	require.NoError(t, svc.Submit(ctx))

	result, err := svc.AutoReconcile(ctx)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Positive(t, result.Explained)

	payload, err := st.Load(ctx)
	require.NoError(t, err)
	stored, err := models.Decode(payload)
	require.NoError(t, err)
	for _, d := range stored.Discrepancies {
		assert.True(t, d.AutoResolved, "identifier %s", d.Identifier)
	}
}

func TestService_SignOffFlow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestService(t, st, nil)

	require.NoError(t, svc.Start(ctx))
	_, err := svc.Scan(ctx, "IMEI-100")
	require.NoError(t, err)
	_, err = svc.Scan(ctx, "IMEI-101")
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, "CABLE-1M", 1, false)
	require.NoError(t, err)
	require.NoError(t, svc.Submit(ctx))

	// No discrepancies, so sign-off is immediately reachable.
	require.NoError(t, svc.Advance(ctx))
	require.NoError(t, svc.ConfirmSignature(ctx))

	state := svc.State()
	assert.Equal(t, models.StatusCompleted, state.Session.Status)
	require.NotNil(t, state.Session.CompletedAt)

	payload, err := st.Load(ctx)
	require.NoError(t, err)
	stored, err := models.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
}
