package report

import "strings"

// Redis keys used by the store.
const (
	KeyPrefix = "fetch:report"
	RecentKey = "fetch:reports:recent"
)

// ReportKey identifies a stored report.
type ReportKey struct {
	ID string
}

// String generates the Redis key.
// Format: fetch:report:<id>
func (k ReportKey) String() string {
	return KeyPrefix + ":" + strings.TrimSpace(k.ID)
}
