package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joeblew999/plat-style/internal/style"
)

var (
	// operationsTotal counts editor operations by result ("ok" or the error kind).
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapstyle_operations_total",
		Help: "Total editor operations by operation and result",
	}, []string{"operation", "result"})

	// operationDuration tracks editor operation latency.
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mapstyle_operation_duration_seconds",
		Help:    "Editor operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	}, []string{"operation"})
)

func recordOperation(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = string(style.KindOf(err))
		if result == "" {
			result = "error"
		}
	}
	operationsTotal.WithLabelValues(op, result).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
