// internal/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	LedgerMutations      *prometheus.CounterVec
	JournalEntries       *prometheus.CounterVec
	InvestmentsCreated   prometheus.Counter
	ProfitsCredited      prometheus.Counter
	DistributionRuns     *prometheus.CounterVec
	DistributionDuration prometheus.Histogram
	PaymentTransitions   *prometheus.CounterVec
	AuditEvents          *prometheus.CounterVec
	SettingsLookups      *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPLatency          *prometheus.HistogramVec
	Errors               *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			LedgerMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_mutations_total",
				Help:      "Balance mutations by field and outcome.",
			}, []string{"field", "outcome"}),
			JournalEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "journal_entries_total",
				Help:      "Journal entries appended by type.",
			}, []string{"type"}),
			InvestmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "investments_created_total",
				Help:      "Investments opened.",
			}),
			ProfitsCredited: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profits_credited_total",
				Help:      "Daily profit ticks credited.",
			}),
			DistributionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "distribution_runs_total",
				Help:      "Profit sweeps by outcome.",
			}, []string{"outcome"}),
			DistributionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "distribution_duration_seconds",
				Help:      "Duration of one profit sweep.",
				Buckets:   prometheus.DefBuckets,
			}),
			PaymentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_transitions_total",
				Help:      "Deposit and withdrawal status changes.",
			}, []string{"kind", "status"}),
			AuditEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_events_total",
				Help:      "Audit events by sink and outcome.",
			}, []string{"sink", "outcome"}),
			SettingsLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settings_lookups_total",
				Help:      "Settings reads by source.",
			}, []string{"source"}),
			HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code.",
			}, []string{"method", "route", "status"}),
			HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency distribution for HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.LedgerMutations,
			metricsInstance.JournalEntries,
			metricsInstance.InvestmentsCreated,
			metricsInstance.ProfitsCredited,
			metricsInstance.DistributionRuns,
			metricsInstance.DistributionDuration,
			metricsInstance.PaymentTransitions,
			metricsInstance.AuditEvents,
			metricsInstance.SettingsLookups,
			metricsInstance.HTTPRequests,
			metricsInstance.HTTPLatency,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
