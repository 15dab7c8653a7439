package cache

// Stats is a point-in-time snapshot of a cache's counters.
// Hits, Misses and Evictions are cumulative for the cache's lifetime and
// survive Clear.
type Stats struct {
	Name      string  `json:"name"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	Size      int     `json:"size"`
	HitRate   float64 `json:"hitRate"` // percent, 0 when there were no lookups
}

func hitRate(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
