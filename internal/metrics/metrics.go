package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"seoscout/internal/ratelimit"
)

var (
	governorRateDesc = prometheus.NewDesc(
		"seoscout_provider_rate_current",
		"Provider admissions counted in the current trailing rate window",
		nil, nil,
	)
	governorCapacityDesc = prometheus.NewDesc(
		"seoscout_provider_rate_available",
		"Remaining provider admissions in the current trailing rate window",
		nil, nil,
	)

	seedFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seoscout_seed_lookup_failures_total",
		Help: "Seed lookups dropped after exhausting their retry",
	})
	providerRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seoscout_provider_retries_total",
		Help: "Provider lookups retried after a transient failure",
	})
	rankFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seoscout_rank_fallbacks_total",
		Help: "Ranking requests served by the deterministic fallback",
	})
	researchRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seoscout_research_requests_total",
		Help: "Research pipeline invocations",
	})
)

// GovernorCollector exports the rate governor's live window state on scrape.
type GovernorCollector struct {
	governor *ratelimit.Governor
}

// Describe sends the metric descriptors to the channel.
func (c *GovernorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- governorRateDesc
	ch <- governorCapacityDesc
}

// Collect reads the governor's current window.
func (c *GovernorCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(governorRateDesc, prometheus.GaugeValue, float64(c.governor.CurrentRate()))
	ch <- prometheus.MustNewConstMetric(governorCapacityDesc, prometheus.GaugeValue, float64(c.governor.AvailableCapacity()))
}

var (
	initOnce    sync.Once
	initialized atomic.Bool
)

// Init registers all collectors. Must be called once at startup; the record
// helpers are no-ops before it runs so library tests do not need a registry.
func Init(governor *ratelimit.Governor) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			&GovernorCollector{governor: governor},
			seedFailures,
			providerRetries,
			rankFallbacks,
			researchRequests,
		)
		initialized.Store(true)
	})
}

// RecordSeedFailure counts a seed dropped after its retry.
func RecordSeedFailure() {
	if initialized.Load() {
		seedFailures.Inc()
	}
}

// RecordProviderRetry counts a transient-failure retry.
func RecordProviderRetry() {
	if initialized.Load() {
		providerRetries.Inc()
	}
}

// RecordRankFallback counts a ranking served by the deterministic formula.
func RecordRankFallback() {
	if initialized.Load() {
		rankFallbacks.Inc()
	}
}

// RecordResearchRequest counts a pipeline invocation.
func RecordResearchRequest() {
	if initialized.Load() {
		researchRequests.Inc()
	}
}
