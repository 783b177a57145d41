// Package metrics exposes the Prometheus registry shared by the fetcher and
// the report store. Collectors are defined next to the code that updates them
// (pkg/fetch, pkg/report) and registered via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the module.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the counterpart of Registry used to serve metrics.
var Gatherer = prometheus.DefaultGatherer

// Handler returns an HTTP handler serving every registered metric.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Fetch Metrics (pkg/fetch):
//   - fetch_requests_total{result} (Counter): Fetched URLs by result (success, failure)
//   - fetch_errors_total{class} (Counter): Failures by class (client, server, network, timeout, task)
//   - fetch_request_duration_seconds (Histogram): Single URL duration, body read included
//   - fetch_inflight_requests (Gauge): Requests currently in flight
//   - fetch_batches_total (Counter): FetchAll calls
//   - fetch_batch_size (Histogram): URLs per FetchAll call
//   - fetch_batch_duration_seconds (Histogram): FetchAll wall-clock duration
//
// Report Metrics (pkg/report):
//   - fetch_report_operations_total{operation} (Counter): Store operations (save, get, delete, recent)
//   - fetch_report_errors_total{operation} (Counter): Store operation errors
//
// Example Prometheus Queries:
//
//   # Failure ratio
//   sum(rate(fetch_requests_total{result="failure"}[5m])) /
//   sum(rate(fetch_requests_total[5m]))
//
//   # Timeouts per minute
//   rate(fetch_errors_total{class="timeout"}[1m]) * 60
//
//   # P95 single request latency
//   histogram_quantile(0.95, rate(fetch_request_duration_seconds_bucket[5m]))
//
//   # Average batch size
//   rate(fetch_batch_size_sum[5m]) / rate(fetch_batch_size_count[5m])
