package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteComputeTotal counts quote pricing computations by strategy and outcome.
	QuoteComputeTotal *prometheus.CounterVec
	// QuoteComputeDuration records pricing computation latency in milliseconds.
	QuoteComputeDuration prometheus.Histogram
	// QuoteCacheTotal counts total-cache lookups by result (hit or miss).
	QuoteCacheTotal *prometheus.CounterVec
	// AdvisoryWarningsTotal counts advisory hotel-pricing warnings emitted.
	AdvisoryWarningsTotal prometheus.Counter
	// RecomputeTasksTotal counts async recompute task outcomes.
	RecomputeTasksTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteComputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_compute_total",
			Help:      "Count of quote pricing computations by strategy and result.",
		}, []string{"strategy", "result"})
		QuoteComputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_compute_duration_ms",
			Help:      "Latency of quote pricing computations in milliseconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		})
		QuoteCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_total",
			Help:      "Count of quote total cache lookups by result.",
		}, []string{"result"})
		AdvisoryWarningsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_warnings_total",
			Help:      "Number of advisory hotel-pricing warnings emitted.",
		})
		RecomputeTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recompute_tasks_total",
			Help:      "Count of asynchronous quote recompute task outcomes.",
		}, []string{"result"})

		mustRegisterCollector(reg, QuoteComputeTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteComputeTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteComputeDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteComputeDuration = v
			}
		})
		mustRegisterCollector(reg, QuoteCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteCacheTotal = v
			}
		})
		mustRegisterCollector(reg, AdvisoryWarningsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				AdvisoryWarningsTotal = v
			}
		})
		mustRegisterCollector(reg, RecomputeTasksTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RecomputeTasksTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
