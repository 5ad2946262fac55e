// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-sskr.
//
// go-sskr is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


// Package metrics provides Prometheus instrumentation for split and combine
// operations. The CLI is short lived, so metrics are flushed to a node
// exporter textfile instead of being scraped.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all sskr metrics
	Namespace = "sskr"

	// Label names
	LabelOperation = "operation"
	LabelScheme    = "scheme"
	LabelStatus    = "status"
	LabelErrorType = "error_type"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpSplit   = "split"
	OpCombine = "combine"
	OpLoad    = "load"

	// Scheme names
	SchemeSSKR   = "sskr"
	SchemeShamir = "shamir"
)

var (
	// OperationsTotal counts operations by type, scheme and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of split and combine operations by scheme and status",
		},
		[]string{LabelOperation, LabelScheme, LabelStatus},
	)

	// OperationDuration tracks operation latency in seconds.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of split and combine operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{LabelOperation, LabelScheme},
	)

	// ErrorsTotal counts failures by error type.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// SharesTotal counts shares produced by split or consumed by combine.
	SharesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shares_total",
			Help:      "Total number of shares produced or consumed",
		},
		[]string{LabelOperation, LabelScheme},
	)

	// SecretBytes observes secret lengths.
	SecretBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "secret_bytes",
			Help:      "Length of split or recovered secrets in bytes",
			Buckets:   []float64{16, 32, 64, 128, 256, 1024, 4096},
		},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation records an operation with its duration in seconds.
func RecordOperation(operation, scheme, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, scheme, status).Inc()
	OperationDuration.WithLabelValues(operation, scheme).Observe(duration)
}

// RecordError records a failed operation. errorType should be a short
// snake_case identifier such as "insufficient_groups".
func RecordError(operation, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordShares adds n to the share counter.
func RecordShares(operation, scheme string, n int) {
	if !enabled.Load() {
		return
	}
	SharesTotal.WithLabelValues(operation, scheme).Add(float64(n))
}

// RecordSecretSize observes a secret length.
func RecordSecretSize(n int) {
	if !enabled.Load() {
		return
	}
	SecretBytes.Observe(float64(n))
}

// WriteTextfile writes every registered metric to path in the text
// exposition format. The write is atomic.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
