// Package metrics holds the Prometheus collectors of gridframe.
//
// Collectors are registered on Registry rather than the global default
// registry, so an embedding process decides whether to expose them.
//
// # Basic Usage
//
//	timer := metrics.NewTimer()
//	rows, err := mapper.Materialize(root, filter, ctx, handler)
//	metrics.ObserveOperation("get", "GENERATOR", timer.Stop(), err)
//	metrics.RowsMaterialized.WithLabelValues("GENERATOR").Add(float64(rows))
//
// # Metric Types
//
// Counter: rows materialized and updated, operation errors
// Gauge: native dataframes currently owned by a foreign caller
// Histogram: operation duration
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gridframe/gridframe/pkg/errors"
)

// Registry holds every gridframe collector.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// RowsMaterialized counts rows written to a handler.
	// Labels: element_type
	RowsMaterialized = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridframe_rows_materialized_total",
			Help: "Total number of rows materialized",
		},
		[]string{"element_type"},
	)

	// RowsUpdated counts input rows applied to the network.
	// Labels: element_type
	RowsUpdated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridframe_rows_updated_total",
			Help: "Total number of rows applied by updates",
		},
		[]string{"element_type"},
	)

	// OperationDuration tracks call latency in seconds.
	// Labels: operation (get/update/series), element_type
	OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gridframe_operation_duration_seconds",
			Help: "Duration of dataframe operations in seconds",
			Buckets: []float64{
				1e-5, // 10μs - single row lookups
				1e-4,
				1e-3, // 1ms - small networks
				1e-2,
				1e-1, // 100ms - regional models
				1,
				10, // full continental scans
			},
		},
		[]string{"operation", "element_type"},
	)

	// OperationErrors counts failed calls by error type.
	// Labels: operation, error_type
	OperationErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridframe_operation_errors_total",
			Help: "Total number of failed dataframe operations",
		},
		[]string{"operation", "error_type"},
	)

	// NativeDataframesLive is the number of native dataframes allocated and
	// not yet released.
	NativeDataframesLive = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridframe_native_dataframes_live",
			Help: "Native dataframes owned by the caller and not yet freed",
		},
	)
)

// ObserveOperation records the duration of one call and, when err is not
// nil, counts it under its error type.
func ObserveOperation(operation, elementType string, d time.Duration, err error) {
	OperationDuration.WithLabelValues(operation, elementType).Observe(d.Seconds())
	if err != nil {
		OperationErrors.WithLabelValues(operation, string(errors.TypeOf(err))).Inc()
	}
}

// Timer measures the duration of one operation.
type Timer struct {
	start time.Time
}

// NewTimer starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed time since creation. It can be called more than
// once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
