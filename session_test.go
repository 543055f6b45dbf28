package handodds

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every operation
type failingStore struct{ err error }

func (s failingStore) Load(context.Context, string) (*PersistedInputs, error) { return nil, s.err }
func (s failingStore) Save(context.Context, string, *PersistedInputs) error { return s.err }
func (s failingStore) Delete(context.Context, string) error { return s.err }

// blockingCache parks the first lookup until release is closed
type blockingCache struct {
	*MemoryCache
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newBlockingCache() *blockingCache {
	return &blockingCache{
		MemoryCache: NewMemoryCache(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (c *blockingCache) Load(key CombinationKey) (float64, bool) {
	c.once.Do(func() {
		close(c.entered)
		<-c.release
	})
	return c.MemoryCache.Load(key)
}

func intPtr(v int) *int { return &v }

func newTestSession(t *testing.T, store InputStore) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), "test", newTestCalculator(), store, NewSilentLogger())
	require.NoError(t, err)
	return s
}

func TestNewSession_Defaults(t *testing.T) {
	s := newTestSession(t, nil)

	snap := s.Snapshot()
	assert.Equal(t, "test", snap.ID)
	assert.Equal(t, TabBadHand, snap.ActiveTab)
	assert.Equal(t, DefaultBadHandParams(), snap.BadHand)
	assert.Equal(t, DefaultMulliganParams(), snap.Mulligan)
	assert.Equal(t, IdleState(), snap.State)
	assert.False(t, snap.State.IsCalculating())

	_, err := NewSession(context.Background(), "", newTestCalculator(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidParameters)
	_, err = NewSession(context.Background(), "test", nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestSession_Calculate(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	state := s.Calculate()
	require.True(t, state.HasResult())
	assert.Equal(t, UnitPercent, state.Result.Unit)
	assert.Equal(t, DescriptionBadHand, state.Result.Description)
	assert.InDelta(t, 15.817220825309713, state.Result.Value, 1e-9)
	assert.Nil(t, state.Failure)
	assert.Equal(t, state, s.State())

	require.NoError(t, s.SetActiveTab(ctx, TabExpMulligan))
	assert.Equal(t, StatusIdle, s.State().Status, "switching tabs discards the previous result")

	state = s.Calculate()
	require.True(t, state.HasResult())
	assert.Equal(t, UnitTimes, state.Result.Unit)
	assert.Equal(t, DescriptionExpMulligan, state.Result.Description)
	assert.InDelta(t, 1.5031312560956829, state.Result.Value, 1e-12)

	s.ResetCalculation()
	assert.Equal(t, IdleState(), s.State())
}

func TestSession_CalculateErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	require.NoError(t, s.UpdateBadHandInputs(ctx, BadHandPatch{Hand: intPtr(-1)}))
	state := s.Calculate()
	require.True(t, state.HasError())
	assert.Nil(t, state.Result)
	assert.Equal(t, KindInvalidInput, state.Failure.Kind)
	assert.Equal(t, FieldHand, state.Failure.Field)
	assert.Equal(t, "hand must be a non-negative integer", state.Failure.Message)

	require.NoError(t, s.UpdateBadHandInputs(ctx, BadHandPatch{Deck: intPtr(5), Hand: intPtr(7)}))
	state = s.Calculate()
	require.True(t, state.HasError())
	assert.Equal(t, KindConstraintViolation, state.Failure.Kind)
	assert.Empty(t, state.Failure.Field)
	assert.Equal(t, "hand must not exceed deck", state.Failure.Message)
}

func TestSession_PatchesAndReset(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	require.NoError(t, s.UpdateBadHandInputs(ctx, BadHandPatch{Deck: intPtr(40), BadCount: intPtr(2)}))
	require.NoError(t, s.UpdateMulliganInputs(ctx, MulliganPatch{MarkedCount: intPtr(8)}))

	snap := s.Snapshot()
	assert.Equal(t, BadHandParams{Deck: 40, Hand: 7, GoodCount: 4, BadCount: 2}, snap.BadHand)
	assert.Equal(t, MulliganParams{Deck: 60, Hand: 7, MarkedCount: 8}, snap.Mulligan)

	// only the active tab is restored
	s.Calculate()
	require.NoError(t, s.ResetInputs(ctx))
	snap = s.Snapshot()
	assert.Equal(t, DefaultBadHandParams(), snap.BadHand)
	assert.Equal(t, MulliganParams{Deck: 60, Hand: 7, MarkedCount: 8}, snap.Mulligan)
	assert.Equal(t, StatusIdle, snap.State.Status)

	require.NoError(t, s.SetActiveTab(ctx, TabExpMulligan))
	require.NoError(t, s.ResetInputs(ctx))
	assert.Equal(t, DefaultMulliganParams(), s.Snapshot().Mulligan)
}

func TestSession_UnknownTab(t *testing.T) {
	s := newTestSession(t, nil)

	assert.ErrorIs(t, s.SetActiveTab(context.Background(), "odds"), ErrUnknownTab)
	assert.Equal(t, TabBadHand, s.Snapshot().ActiveTab)
}

func TestSession_PersistsInputs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryInputStore()
	calc := newTestCalculator()

	first, err := NewSession(ctx, "alice", calc, store, NewSilentLogger())
	require.NoError(t, err)
	require.NoError(t, first.UpdateMulliganInputs(ctx, MulliganPatch{Deck: intPtr(40), Hand: intPtr(5), MarkedCount: intPtr(3)}))
	require.NoError(t, first.SetActiveTab(ctx, TabExpMulligan))
	first.Calculate()

	second, err := NewSession(ctx, "alice", calc, store, NewSilentLogger())
	require.NoError(t, err)

	snap := second.Snapshot()
	assert.Equal(t, TabExpMulligan, snap.ActiveTab)
	assert.Equal(t, MulliganParams{Deck: 40, Hand: 5, MarkedCount: 3}, snap.Mulligan)
	assert.Equal(t, IdleState(), snap.State, "calculation state is not persisted")

	state := second.Calculate()
	require.True(t, state.HasResult())
	assert.InDelta(t, 1.9625187406296851, state.Result.Value, 1e-12)
}

func TestSession_StoreFailures(t *testing.T) {
	ctx := context.Background()
	store := failingStore{err: errors.New("store unavailable")}

	s, err := NewSession(ctx, "alice", newTestCalculator(), store, NewSilentLogger())
	require.NoError(t, err, "an unreadable store falls back to defaults")
	assert.Equal(t, DefaultBadHandParams(), s.Snapshot().BadHand)

	err = s.UpdateBadHandInputs(ctx, BadHandPatch{Deck: intPtr(40)})
	assert.EqualError(t, err, "store unavailable")
	assert.Equal(t, 40, s.Snapshot().BadHand.Deck, "the in-memory update still applies")
}

func TestSession_StaleResultIsDiscarded(t *testing.T) {
	ctx := context.Background()
	cache := newBlockingCache()
	calc := NewCalculator(newTestEngine(WithCache(cache)))

	s, err := NewSession(ctx, "test", calc, nil, NewSilentLogger())
	require.NoError(t, err)

	done := make(chan CalculationState)
	go func() { done <- s.Calculate() }()

	<-cache.entered
	assert.True(t, s.State().IsCalculating())

	require.NoError(t, s.SetActiveTab(ctx, TabExpMulligan))
	close(cache.release)

	returned := <-done
	assert.Equal(t, IdleState(), returned)
	assert.Equal(t, IdleState(), s.State())
}
