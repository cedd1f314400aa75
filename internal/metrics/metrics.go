// Package metrics exposes the Prometheus counters and histograms for DNS
// lookups, checker runs and API requests. The engine and API layers
// record to them; the DNS lookup collectors (DNSLookupTotal,
// DNSLookupDuration, DNSLookupErrors) are registered but nothing in this
// module records to them. All collectors register
// against the default registry so promhttp.Handler() in the API server
// can expose them without any wiring beyond importing this package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DNSLookupTotal counts completed lookups by server target, query
	// type, and outcome ("success" or "error").
	DNSLookupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnshealth_dns_lookup_total",
		Help: "Total DNS lookups performed, by server target, query type, and outcome.",
	}, []string{"target", "qtype", "outcome"})

	// DNSLookupDuration observes lookup latency in seconds, by server
	// target and query type.
	DNSLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dnshealth_dns_lookup_duration_seconds",
		Help:    "DNS lookup duration in seconds, by server target and query type.",
		Buckets: prometheus.DefBuckets,
	}, []string{"target", "qtype"})

	// DNSLookupErrors counts lookup failures by server target and a
	// short reason code (invalid_qtype, context_cancelled, query_failed,
	// no_response, or the resolver's reported error string).
	DNSLookupErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnshealth_dns_lookup_errors_total",
		Help: "DNS lookup errors, by server target and reason.",
	}, []string{"target", "reason"})

	// APIRequestsTotal counts incoming API requests by endpoint.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnshealth_api_requests_total",
		Help: "API requests received, by endpoint.",
	}, []string{"endpoint"})

	// APIResultPollsTotal counts task-status polling requests.
	APIResultPollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dnshealth_api_result_polls_total",
		Help: "Task status polling requests received.",
	})

	// CheckTotal counts completed checker runs by checker name and
	// resolved status (pass, warning, error, info).
	CheckTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnshealth_check_total",
		Help: "Completed checks, by checker name and resolved status.",
	}, []string{"checker", "status"})

	// CheckDuration observes per-checker latency in seconds.
	CheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dnshealth_check_duration_seconds",
		Help:    "Checker execution duration in seconds, by checker name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"checker"})

	// AnalyzeDuration observes whole-report latency in seconds.
	AnalyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dnshealth_analyze_duration_seconds",
		Help:    "Whole-domain analysis duration in seconds.",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)

// RecordQueryMetrics records a completed lookup's duration, by server
// target and query type, and classifies it by DNS response code.
func RecordQueryMetrics(target string, durationSeconds float64, rcode string, qtype string) {
	DNSLookupDuration.WithLabelValues(target, qtype).Observe(durationSeconds)
	outcome := "success"
	if rcode != "" && rcode != "NOERROR" {
		outcome = "error"
	}
	DNSLookupTotal.WithLabelValues(target, qtype, outcome).Inc()
}

// RecordCheck records a completed checker run's status and duration.
func RecordCheck(checker string, status string, durationSeconds float64) {
	CheckTotal.WithLabelValues(checker, status).Inc()
	CheckDuration.WithLabelValues(checker).Observe(durationSeconds)
}
