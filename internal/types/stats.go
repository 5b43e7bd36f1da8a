package types

// CacheStats is an immutable snapshot of one tier's counters. Counters only
// grow for the lifetime of the cache unless it is explicitly cleared.
type CacheStats struct {
	HitCount      uint64 `json:"hitCount"`
	MissCount     uint64 `json:"missCount"`
	EvictionCount uint64 `json:"evictionCount"`
	Size          uint64 `json:"size"`
}

// RequestCount returns the number of lookups that reached the cache.
func (s CacheStats) RequestCount() uint64 {
	return s.HitCount + s.MissCount
}

// HitRate returns hits/(hits+misses), or 0 if nothing has been looked up.
func (s CacheStats) HitRate() float64 {
	total := s.RequestCount()
	if total == 0 {
		return 0
	}
	return float64(s.HitCount) / float64(total)
}

// MissRate returns 1-HitRate, or 0 if nothing has been looked up.
func (s CacheStats) MissRate() float64 {
	if s.RequestCount() == 0 {
		return 0
	}
	return 1 - s.HitRate()
}

// Minus returns the counter delta since an earlier snapshot. Size is taken
// from s.
func (s CacheStats) Minus(earlier CacheStats) CacheStats {
	return CacheStats{
		HitCount:      sub(s.HitCount, earlier.HitCount),
		MissCount:     sub(s.MissCount, earlier.MissCount),
		EvictionCount: sub(s.EvictionCount, earlier.EvictionCount),
		Size:          s.Size,
	}
}

func sub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
