package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics carries the per-run counters. The program is a batch job, so the
// counters live on a private registry and are pushed to a Pushgateway at
// the end of the run instead of being scraped.
type Metrics struct {
	registry *prometheus.Registry

	RateFetchesTotal      prometheus.Counter
	AlertsSentTotal       prometheus.Counter
	RepliesProcessedTotal prometheus.Counter
	CommandsAppliedTotal  prometheus.Counter
	CommandsRejectedTotal prometheus.Counter
	PersistConflictsTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		RateFetchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "rate_fetches_total",
			Help: "Total number of successful rate page fetches",
		}),

		AlertsSentTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "alerts_sent_total",
			Help: "Total number of threshold alerts sent by email",
		}),

		RepliesProcessedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "replies_processed_total",
			Help: "Total number of reply messages processed",
		}),

		CommandsAppliedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "commands_applied_total",
			Help: "Total number of reply commands applied to the document",
		}),

		CommandsRejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "commands_rejected_total",
			Help: "Total number of reply lines rejected during parse or apply",
		}),

		PersistConflictsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "persist_conflicts_total",
			Help: "Total number of document saves aborted by a concurrent edit",
		}),
	}
}

// Push sends the run's counters to the Pushgateway; a no-op when no gateway
// is configured.
func (m *Metrics) Push(gatewayURL string) error {
	if gatewayURL == "" {
		return nil
	}
	return push.New(gatewayURL, "exchange_rate_monitor").
		Gatherer(m.registry).
		Push()
}
