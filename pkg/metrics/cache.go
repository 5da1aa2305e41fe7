package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CacheMetrics counts tiered cache lookups and tag invalidations.
type CacheMetrics struct {
	requests      *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stashkeeper_cache_requests_total",
		Help: "Cache lookups by tier and result.",
	}, []string{"tier", "result"})
	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stashkeeper_cache_invalidations_total",
		Help: "Tag version bumps by tag kind.",
	}, []string{"kind"})
	reg.MustRegister(requests, invalidations)
	return &CacheMetrics{
		requests:      requests,
		invalidations: invalidations,
	}
}

// ObserveRequest records one lookup against tier.
func (c *CacheMetrics) ObserveRequest(tier, result string) {
	if c == nil || c.requests == nil {
		return
	}
	c.requests.WithLabelValues(normalizeLabel(tier), normalizeLabel(result)).Inc()
}

// IncInvalidation records one tag bump. kind is the tag prefix such as "id".
func (c *CacheMetrics) IncInvalidation(kind string) {
	if c == nil || c.invalidations == nil {
		return
	}
	c.invalidations.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
