// Package metrics exposes Prometheus collectors for the workflow editor.
//
// Collectors are registered with the default registry at package init and
// served by the /metrics endpoint of the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Propagation results
const (
	ResultApplied    = "applied"
	ResultSkipped    = "skipped"
	ResultSuppressed = "suppressed"
	ResultFailed     = "failed"
)

// Propagation directions
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

var (
	// SyncPropagations counts events handled by the synchronization engine
	SyncPropagations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowcanvas_sync_propagations_total",
		Help: "Events handled by the synchronization engine by direction, event and result",
	}, []string{"direction", "event", "result"})

	// GraphMutations counts logical graph notifications by kind
	GraphMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowcanvas_graph_mutations_total",
		Help: "Logical graph notifications by kind",
	}, []string{"kind"})

	// GraphSize tracks the number of operators and links in the logical graph
	GraphSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flowcanvas_graph_entities",
		Help: "Operators and links currently in the logical graph",
	}, []string{"entity"})

	// ExecutionSubmissions counts execution requests by outcome
	ExecutionSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowcanvas_execution_submissions_total",
		Help: "Workflow execution submissions by outcome",
	}, []string{"outcome"})

	// ExecutionDuration tracks round-trip latency to the execution backend
	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowcanvas_execution_duration_seconds",
		Help:    "Execution backend round-trip duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	// CatalogReloads counts metadata catalog reloads by result
	CatalogReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowcanvas_catalog_reloads_total",
		Help: "Operator metadata catalog reloads by result",
	}, []string{"result"})
)
