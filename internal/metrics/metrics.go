// Package metrics holds the Prometheus instruments shared by the API client,
// the form controller, and the submission adapter.  Collectors are registered
// with the default registry, so serving promhttp.Handler() exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	CorporationLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboard_corporation_lookups_total",
			Help: "Corporation-number lookups by outcome (valid, invalid, error).",
		}, []string{"outcome"})

	StaleLookupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "onboard_stale_lookups_total",
			Help: "Lookup results discarded because the field changed or a newer lookup was issued.",
		})

	ProfileSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboard_profile_submissions_total",
			Help: "Profile submissions by outcome (success, failure).",
		}, []string{"outcome"})

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboard_api_request_duration_seconds",
			Help:    "Latency of backend requests by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"})
)

func init() {
	prometheus.MustRegister(
		CorporationLookupsTotal,
		StaleLookupsTotal,
		ProfileSubmissionsTotal,
		APIRequestDuration,
	)
}
