package handodds

import (
	"sync/atomic"
	"time"
)

// EngineMetrics 引擎指标收集器
type EngineMetrics struct {
	// 组合数统计
	Lookups           int64 `json:"lookups"`            // Combination 调用次数
	CacheHits         int64 `json:"cache_hits"`         // 缓存命中次数
	CacheMisses       int64 `json:"cache_misses"`       // 缓存未命中次数
	Computations      int64 `json:"computations"`       // 实际计算次数
	PrecisionWarnings int64 `json:"precision_warnings"` // 精度告警次数
	CacheErrors       int64 `json:"cache_errors"`       // Redis 错误数

	// 计算器统计
	BadHandCalculations  int64 `json:"bad_hand_calculations"`
	MulliganCalculations int64 `json:"mulligan_calculations"`
	FailedCalculations   int64 `json:"failed_calculations"`

	StartTime      int64 `json:"start_time"`
	LastUpdateTime int64 `json:"last_update_time"`
}

// HitRate returns cache hits as a percentage of lookups
func (m *EngineMetrics) HitRate() float64 {
	lookups := atomic.LoadInt64(&m.Lookups)
	if lookups == 0 {
		return 0.0
	}
	return float64(atomic.LoadInt64(&m.CacheHits)) / float64(lookups) * 100.0
}

// Reset 重置指标
func (m *EngineMetrics) Reset() {
	atomic.StoreInt64(&m.Lookups, 0)
	atomic.StoreInt64(&m.CacheHits, 0)
	atomic.StoreInt64(&m.CacheMisses, 0)
	atomic.StoreInt64(&m.Computations, 0)
	atomic.StoreInt64(&m.PrecisionWarnings, 0)
	atomic.StoreInt64(&m.CacheErrors, 0)
	atomic.StoreInt64(&m.BadHandCalculations, 0)
	atomic.StoreInt64(&m.MulliganCalculations, 0)
	atomic.StoreInt64(&m.FailedCalculations, 0)
	atomic.StoreInt64(&m.StartTime, time.Now().UnixNano())
	atomic.StoreInt64(&m.LastUpdateTime, time.Now().UnixNano())
}

func (m *EngineMetrics) touch() {
	atomic.StoreInt64(&m.LastUpdateTime, time.Now().UnixNano())
}

func (m *EngineMetrics) recordLookup(hit bool) {
	atomic.AddInt64(&m.Lookups, 1)
	if hit {
		atomic.AddInt64(&m.CacheHits, 1)
	} else {
		atomic.AddInt64(&m.CacheMisses, 1)
	}
	m.touch()
}

func (m *EngineMetrics) recordComputation() {
	atomic.AddInt64(&m.Computations, 1)
	m.touch()
}

func (m *EngineMetrics) recordPrecisionWarning() {
	atomic.AddInt64(&m.PrecisionWarnings, 1)
	m.touch()
}

func (m *EngineMetrics) recordCacheError() {
	atomic.AddInt64(&m.CacheErrors, 1)
	m.touch()
}

func (m *EngineMetrics) recordCalculation(counter *int64, err error) {
	atomic.AddInt64(counter, 1)
	if err != nil {
		atomic.AddInt64(&m.FailedCalculations, 1)
	}
	m.touch()
}

// snapshot 获取指标的副本
func (m *EngineMetrics) snapshot() EngineMetrics {
	return EngineMetrics{
		Lookups:              atomic.LoadInt64(&m.Lookups),
		CacheHits:            atomic.LoadInt64(&m.CacheHits),
		CacheMisses:          atomic.LoadInt64(&m.CacheMisses),
		Computations:         atomic.LoadInt64(&m.Computations),
		PrecisionWarnings:    atomic.LoadInt64(&m.PrecisionWarnings),
		CacheErrors:          atomic.LoadInt64(&m.CacheErrors),
		BadHandCalculations:  atomic.LoadInt64(&m.BadHandCalculations),
		MulliganCalculations: atomic.LoadInt64(&m.MulliganCalculations),
		FailedCalculations:   atomic.LoadInt64(&m.FailedCalculations),
		StartTime:            atomic.LoadInt64(&m.StartTime),
		LastUpdateTime:       atomic.LoadInt64(&m.LastUpdateTime),
	}
}

func newEngineMetrics() *EngineMetrics {
	m := &EngineMetrics{}
	m.Reset()
	return m
}
