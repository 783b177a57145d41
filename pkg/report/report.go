package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/fast-requests/pkg/fetch"
	"github.com/google/uuid"
)

// ErrInvalidReport indicates a report that is inconsistent or incomplete.
var ErrInvalidReport = errors.New("invalid report")

// Entry summarizes the outcome of one URL.
type Entry struct {
	// Index is the position of the URL in the batch.
	Index int `json:"index"`

	// URL is the URL as requested.
	URL string `json:"url"`

	// StatusCode is the HTTP status, 0 when none was received.
	StatusCode int `json:"status_code"`

	// FinalURL is set for successes and may differ from URL after redirects.
	FinalURL string `json:"final_url,omitempty"`

	// Error and ErrorClass are set for failures.
	Error      string `json:"error,omitempty"`
	ErrorClass string `json:"error_class,omitempty"`

	// BodyBytes is the size of the decoded body text.
	BodyBytes int `json:"body_bytes"`

	Duration time.Duration `json:"duration"`
}

// OK reports whether the entry is a success.
func (e Entry) OK() bool {
	return e.Error == ""
}

// Report summarizes one FetchAll call.
type Report struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Duration  time.Duration `json:"duration"`

	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	Entries []Entry `json:"entries"`
}

// FromOutcomes builds a report with a fresh ID from the outcomes of a batch.
func FromOutcomes(outcomes []fetch.Outcome, startedAt time.Time, duration time.Duration) *Report {
	r := &Report{
		ID:        uuid.NewString(),
		CreatedAt: startedAt,
		Duration:  duration,
		Total:     len(outcomes),
		Entries:   make([]Entry, len(outcomes)),
	}

	for i, o := range outcomes {
		entry := Entry{
			Index:      i,
			URL:        o.URL,
			StatusCode: o.StatusCode(),
			Duration:   o.Duration,
		}

		switch {
		case o.OK():
			entry.FinalURL = o.Response.URL
			entry.BodyBytes = len(o.Response.Text)
			r.Succeeded++
		case o.Err != nil:
			entry.Error = o.Err.Error()
			entry.ErrorClass = string(o.Err.Class)
			r.Failed++
		default:
			entry.Error = "empty outcome"
			r.Failed++
		}

		r.Entries[i] = entry
	}

	return r
}

// Validate checks that the counters agree with the entries.
func (r *Report) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil report", ErrInvalidReport)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidReport)
	}
	if r.Total != len(r.Entries) {
		return fmt.Errorf("%w: total %d does not match %d entries", ErrInvalidReport, r.Total, len(r.Entries))
	}
	if r.Succeeded+r.Failed != r.Total {
		return fmt.Errorf("%w: succeeded %d + failed %d != total %d", ErrInvalidReport, r.Succeeded, r.Failed, r.Total)
	}
	return nil
}

// FailureRate returns the share of failed URLs, 0 for an empty batch.
func (r *Report) FailureRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Failed) / float64(r.Total)
}
