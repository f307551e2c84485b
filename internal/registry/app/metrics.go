package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "ledger_operations_total",
			Help:      "Total number of credit ledger operations.",
		},
		[]string{"operation", "status"}, // e.g. operation="mint", status="success"
	)

	outboxPublishedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "outbox_messages_total",
			Help:      "Total number of outbox messages processed by the dispatcher.",
		},
		[]string{"subject", "outcome"}, // outcome="published"|"retried"|"dead"
	)

	outboxDispatchDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "registry",
			Name:      "outbox_dispatch_duration_seconds",
			Help:      "Duration of outbox dispatch cycles.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{},
	)
)
