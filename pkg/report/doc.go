// Package report stores summaries of fetch batches in Redis.
//
// A Report records, for every URL of a FetchAll call, the requested and final
// URL, the status code, the error (if any) and the body size. Response bodies
// themselves are never stored.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := report.NewStore(redisClient, report.DefaultConfig())
//
//	started := time.Now()
//	outcomes := fetch.FetchAll(urls)
//	r := report.FromOutcomes(outcomes, started, time.Since(started))
//
//	if err := store.Save(ctx, r); err != nil {
//		return err
//	}
//
//	stored, err := store.Get(ctx, r.ID)
//	if errors.Is(err, report.ErrNotFound) {
//		// expired or never stored
//	}
//
// # Storage Layout
//
//   - fetch:report:<id> holds the JSON report with a TTL (default 24h)
//   - fetch:reports:recent is a capped list of report IDs, newest first
//
// Both keys are written in one transaction. IDs in the recent list may refer
// to reports that have already expired.
//
// # Metrics
//
//   - fetch_report_operations_total{operation} - Store operations
//   - fetch_report_errors_total{operation} - Store operation errors
package report
