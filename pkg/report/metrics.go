package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations tracks store operations by type
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_report_operations_total",
			Help: "Total number of report store operations",
		},
		[]string{"operation"}, // "save", "get", "delete", "recent"
	)

	// StoreErrors tracks store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_report_errors_total",
			Help: "Total number of report store operation errors",
		},
		[]string{"operation"},
	)
)
