package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentMutations counts document store mutations by operation.
	// Labels: op (create/update/delete/pin/rate/delete_category/delete_tag/sync).
	DocumentMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptbox_document_mutations_total",
			Help: "Total number of document store mutations by operation",
		},
		[]string{"op"},
	)

	// PersistFailures counts writes to the backing store that failed.
	// Durability is lost but the in-memory document stays authoritative.
	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promptbox_persist_failures_total",
			Help: "Total number of failed document persistence writes",
		},
	)

	// HandoffDiscards counts malformed editor hand-off payloads dropped.
	HandoffDiscards = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promptbox_handoff_discards_total",
			Help: "Total number of malformed editor hand-off payloads discarded",
		},
	)

	// PromptCount tracks the current library size.
	PromptCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "promptbox_prompts",
			Help: "Current number of prompts in the library",
		},
	)
)

// RecordMutation records one completed document mutation.
func RecordMutation(op string) {
	DocumentMutations.WithLabelValues(op).Inc()
}
