package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Cart API's Prometheus metrics. A nil *Metrics disables
// recording, which tests rely on to avoid duplicate registration.
type Metrics struct {
	CartReads        prometheus.Counter
	CartWrites       prometheus.Counter
	Checkouts        prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	RequestDurations *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		CartReads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domcart_api_cart_reads_total",
			Help: "Cart fetches served by the API",
		}),
		CartWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domcart_api_cart_writes_total",
			Help: "Whole-cart replaces accepted by the API",
		}),
		Checkouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domcart_api_checkouts_total",
			Help: "Checkouts completed",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domcart_api_cart_cache_hits_total",
			Help: "Cart reads answered from the cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domcart_api_cart_cache_misses_total",
			Help: "Cart reads that fell through to the store",
		}),
		RequestDurations: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "domcart_api_request_duration_seconds",
			Help:    "Cart API handler latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func (m *Metrics) RecordRead() {
	if m == nil {
		return
	}
	m.CartReads.Inc()
}

func (m *Metrics) RecordWrite() {
	if m == nil {
		return
	}
	m.CartWrites.Inc()
}

func (m *Metrics) RecordCheckout() {
	if m == nil {
		return
	}
	m.Checkouts.Inc()
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) ObserveRequest(op string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDurations.WithLabelValues(op).Observe(seconds)
}
