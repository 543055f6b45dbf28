package handodds

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"
)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithLogger(NewSilentLogger())}, opts...)...)
}

func TestEngine_CombinationKnownValues(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		n, k int
		want float64
	}{
		{0, 0, 1},
		{5, 2, 10},
		{5, 0, 1},
		{5, 5, 1},
		{60, 7, 386_206_920},
		{52, 5, 2_598_960},
		{3, 5, 0},
		{0, 1, 0},
	}

	for _, tt := range tests {
		got, err := e.Combination(tt.n, tt.k)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "C(%d,%d)", tt.n, tt.k)
	}
}

func TestEngine_CombinationMatchesExactBinomial(t *testing.T) {
	e := newTestEngine()

	for n := 0; n <= 60; n++ {
		for k := 0; k <= n; k++ {
			got, err := e.Combination(n, k)
			require.NoError(t, err)

			want := float64(combin.Binomial(n, k))
			if n <= 50 {
				// every intermediate product stays below 2^53
				assert.Equal(t, want, got, "C(%d,%d)", n, k)
			} else {
				assert.InEpsilon(t, want, got, 1e-12, "C(%d,%d)", n, k)
			}
		}
	}
}

func TestEngine_CombinationProperties(t *testing.T) {
	e := newTestEngine()

	for n := 0; n <= 80; n++ {
		one, err := e.Combination(n, 0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, one)

		one, err = e.Combination(n, n)
		require.NoError(t, err)
		assert.Equal(t, 1.0, one)

		for k := 0; k <= n; k++ {
			a, err := e.Combination(n, k)
			require.NoError(t, err)
			b, err := e.Combination(n, n-k)
			require.NoError(t, err)
			assert.Equal(t, a, b, "symmetry C(%d,%d)", n, k)
		}

		for k := n + 1; k <= n+3; k++ {
			zero, err := e.Combination(n, k)
			require.NoError(t, err)
			assert.Zero(t, zero, "C(%d,%d)", n, k)
		}
	}
}

func TestEngine_CombinationInvalidInput(t *testing.T) {
	e := newTestEngine()

	_, err := e.Combination(-1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = e.Combination(5, -1)
	var calcErr *CalcError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, FieldK, calcErr.Field)

	assert.Zero(t, e.CacheLen(), "failed validation must not touch the cache")
	assert.Zero(t, e.Metrics().Computations)
}

func TestEngine_CachesResults(t *testing.T) {
	t.Run("repeat call is served from cache", func(t *testing.T) {
		e := newTestEngine()

		first, err := e.Combination(60, 7)
		require.NoError(t, err)
		second, err := e.Combination(60, 7)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		m := e.Metrics()
		assert.Equal(t, int64(1), m.Computations)
		assert.Equal(t, int64(2), m.Lookups)
		assert.Equal(t, int64(1), m.CacheHits)
		assert.Equal(t, int64(1), m.CacheMisses)
		assert.InDelta(t, 50.0, m.HitRate(), 1e-9)
	})

	t.Run("base cases are cached", func(t *testing.T) {
		e := newTestEngine()

		_, err := e.Combination(5, 0)
		require.NoError(t, err)
		_, err = e.Combination(3, 9)
		require.NoError(t, err)
		assert.Equal(t, 2, e.CacheLen())

		_, err = e.Combination(3, 9)
		require.NoError(t, err)
		assert.Equal(t, int64(2), e.Metrics().Computations)
	})

	t.Run("keys are stored as given, not reduced", func(t *testing.T) {
		cache := NewMemoryCache()
		e := newTestEngine(WithCache(cache))

		_, err := e.Combination(10, 3)
		require.NoError(t, err)
		_, err = e.Combination(10, 7)
		require.NoError(t, err)

		assert.ElementsMatch(t, []CombinationKey{{10, 3}, {10, 7}}, cache.Keys())
		assert.Equal(t, int64(2), e.Metrics().Computations)
	})

	t.Run("engines do not share caches", func(t *testing.T) {
		a, b := newTestEngine(), newTestEngine()

		_, err := a.Combination(20, 4)
		require.NoError(t, err)
		_, err = b.Combination(20, 4)
		require.NoError(t, err)

		assert.Equal(t, int64(1), a.Metrics().Computations)
		assert.Equal(t, int64(1), b.Metrics().Computations)
	})

	t.Run("reset metrics keeps the cache", func(t *testing.T) {
		e := newTestEngine()

		_, err := e.Combination(8, 4)
		require.NoError(t, err)
		e.ResetMetrics()
		_, err = e.Combination(8, 4)
		require.NoError(t, err)

		assert.Zero(t, e.Metrics().Computations)
		assert.Equal(t, int64(1), e.Metrics().CacheHits)
	})
}

func TestEngine_ConcurrentCallersComputeOnce(t *testing.T) {
	e := newTestEngine()

	const workers = 64
	results := make([]float64, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := e.Combination(100, 50)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, results[0], v)
	}
	m := e.Metrics()
	assert.Equal(t, int64(1), m.Computations)
	assert.Equal(t, int64(workers), m.Lookups)
}

func TestEngine_PrecisionDiagnostic(t *testing.T) {
	var calls []CombinationKey
	e := newTestEngine(WithPrecisionHook(func(n, k int, raw, rounded float64) {
		calls = append(calls, CombinationKey{N: n, K: k})
		assert.Equal(t, 120.0, rounded)
	}))

	assert.False(t, e.checkPrecision(10, 3, 120, 120))
	assert.True(t, e.checkPrecision(10, 3, 120.4, 120))

	assert.Equal(t, []CombinationKey{{10, 3}}, calls)
	assert.Equal(t, int64(1), e.Metrics().PrecisionWarnings)

	// exact coefficients never trip the diagnostic
	_, err := e.Combination(60, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.Metrics().PrecisionWarnings)
}

func TestEngine_CombinationBeyondFloatRange(t *testing.T) {
	var calls []CombinationKey
	e := newTestEngine(WithPrecisionHook(func(n, k int, raw, rounded float64) {
		calls = append(calls, CombinationKey{N: n, K: k})
		assert.True(t, math.IsInf(rounded, 1))
	}))

	v, err := e.Combination(1100, 550)
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))

	assert.Equal(t, []CombinationKey{{1100, 550}}, calls)
	assert.Equal(t, int64(1), e.Metrics().PrecisionWarnings)

	// the largest central coefficient below the limit stays finite
	v, err = e.Combination(1000, 500)
	require.NoError(t, err)
	assert.False(t, math.IsInf(v, 0))
}

func TestEngine_ApplyConfig(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, DefaultPrecisionTolerance, e.Tolerance())

	require.NoError(t, e.ApplyConfig(&EngineConfig{PrecisionTolerance: 1e-6, CacheBackend: CacheBackendMemory}))
	assert.Equal(t, 1e-6, e.Tolerance())

	err := e.ApplyConfig(&EngineConfig{PrecisionTolerance: 0, CacheBackend: CacheBackendMemory})
	assert.ErrorIs(t, err, ErrInvalidTolerance)
	assert.Equal(t, 1e-6, e.Tolerance())

	assert.ErrorIs(t, e.ApplyConfig(nil), ErrInvalidParameters)
}

func TestNewEngineFromConfig(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Engine.PrecisionTolerance = 1e-8

		e, err := NewEngineFromConfig(cfg, nil, NewSilentLogger())
		require.NoError(t, err)
		assert.Equal(t, 1e-8, e.Tolerance())
		assert.IsType(t, &MemoryCache{}, e.cache)
	})

	t.Run("redis backend", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Engine.CacheBackend = CacheBackendRedis

		client := NewRedisClientFromConfig(cfg.Redis)
		defer client.Close()

		e, err := NewEngineFromConfig(cfg, client, NewSilentLogger())
		require.NoError(t, err)
		assert.IsType(t, &RedisCache{}, e.cache)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Engine.CacheBackend = "disk"

		_, err := NewEngineFromConfig(cfg, nil, NewSilentLogger())
		assert.ErrorIs(t, err, ErrUnknownCacheBackend)

		_, err = NewEngineFromConfig(nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidParameters)
	})
}

func TestPackageLevelCombination(t *testing.T) {
	v, err := Combination(5, 2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	_, err = Combination(-1, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Same(t, Default(), Default())
}
