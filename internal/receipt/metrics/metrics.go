package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the receipt pipelines.
type Metrics struct {
	// Latency of each external stage: association, publish, mint, transfer, list
	StageLatency *prometheus.HistogramVec

	// Mint pipeline terminal states (DONE, PARTIAL, FAILED)
	MintOutcome *prometheus.CounterVec

	// Association results by tag
	AssociationOutcome *prometheus.CounterVec

	// Owned-receipt metadata that could not be resolved
	MetadataFailures prometheus.Counter

	// Listing sizes
	OwnedReceipts prometheus.Histogram
}

// New creates a new Metrics instance with all receipt metrics registered.
func New() *Metrics {
	return &Metrics{
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "receiptmint_stage_duration_seconds",
			Help:    "Duration of external pipeline stages",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),

		MintOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "receiptmint_mint_outcomes_total",
			Help: "Mint pipeline runs by terminal state and test mode",
		}, []string{"state", "test_mode"}),

		AssociationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "receiptmint_association_outcomes_total",
			Help: "Token association attempts by result",
		}, []string{"result"}),

		MetadataFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "receiptmint_metadata_resolve_failures_total",
			Help: "Owned receipts whose metadata resolved to null",
		}),

		OwnedReceipts: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "receiptmint_owned_receipts",
			Help:    "Number of receipts returned per ownership listing",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// ObserveStage records how long one external stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementMintOutcome records a terminal pipeline state.
func (m *Metrics) IncrementMintOutcome(state string, testMode bool) {
	if m == nil {
		return
	}
	mode := "false"
	if testMode {
		mode = "true"
	}
	m.MintOutcome.WithLabelValues(state, mode).Inc()
}

// IncrementAssociation records an association result.
func (m *Metrics) IncrementAssociation(result string) {
	if m != nil {
		m.AssociationOutcome.WithLabelValues(result).Inc()
	}
}

// AddMetadataFailures records n unresolved metadata documents.
func (m *Metrics) AddMetadataFailures(n int) {
	if m != nil && n > 0 {
		m.MetadataFailures.Add(float64(n))
	}
}

// ObserveOwned records the size of one listing.
func (m *Metrics) ObserveOwned(n int) {
	if m != nil {
		m.OwnedReceipts.Observe(float64(n))
	}
}
