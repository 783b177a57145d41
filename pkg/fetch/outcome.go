package fetch

import "time"

// Response is the success side of an Outcome.
type Response struct {
	StatusCode int

	// URL is the final URL, after redirects.
	URL string

	// Text is the decoded response body. It is empty when the body could
	// not be read or decoded.
	Text string
}

// Outcome is the result of fetching a single URL. Exactly one of Response
// and Err is set.
type Outcome struct {
	// URL is the URL as requested.
	URL string

	Response *Response
	Err      *RequestError

	// Duration is the time spent on this request, body read included.
	Duration time.Duration
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Response != nil
}

// StatusCode returns the HTTP status of either side, 0 when none was received.
func (o Outcome) StatusCode() int {
	switch {
	case o.Response != nil:
		return o.Response.StatusCode
	case o.Err != nil:
		return o.Err.StatusCode
	default:
		return 0
	}
}

func success(rawURL string, resp *Response, d time.Duration) Outcome {
	return Outcome{URL: rawURL, Response: resp, Duration: d}
}

func failure(rawURL string, err *RequestError, d time.Duration) Outcome {
	return Outcome{URL: rawURL, Err: err, Duration: d}
}
