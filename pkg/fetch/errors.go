package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/alitto/pond/v2"
)

// errNoResult is reported when a task finished without a response or an error.
var errNoResult = errors.New("task returned neither response nor error")

// ErrorClass represents a classification of failed requests.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents connection, protocol and URL errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassTimeout represents requests that exceeded the client timeout.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassTask represents workers that terminated abnormally.
	ErrorClassTask ErrorClass = "task"
)

// RequestError is the failure side of an Outcome.
type RequestError struct {
	// StatusCode is the HTTP status, or 0 when none was received.
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// statusError builds the failure for a response with status >= 400.
func statusError(resp *http.Response, finalURL string) *RequestError {
	class := classifyStatus(resp.StatusCode)
	return &RequestError{
		StatusCode: resp.StatusCode,
		Class:      class,
		Message:    fmt.Sprintf("HTTP status %s error (%s) for url (%s)", class, resp.Status, finalURL),
	}
}

// transportError builds the failure for a request that produced no response.
func transportError(err error) *RequestError {
	return &RequestError{
		Class:   classifyTransport(err),
		Message: err.Error(),
		Err:     err,
	}
}

// taskError builds the failure for a worker that did not run to completion.
// The message keeps the panic value only; the full error, stack included,
// stays in Err.
func taskError(err error) *RequestError {
	return &RequestError{
		Class:   ErrorClassTask,
		Message: "task failed: " + panicSummary(err),
		Err:     err,
	}
}

// panicSummary cuts the goroutine stack that pond appends to panic errors.
func panicSummary(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if i := strings.Index(msg, ", goroutine "); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimRight(msg, " ,:")
}

// classifyStatus maps an HTTP error status to its class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// classifyTransport separates timeouts from other transport errors.
func classifyTransport(err error) ErrorClass {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorClassTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	return ErrorClassNetwork
}

// toRequestError converts whatever a task returned into a RequestError.
// Panics recovered by the pool take precedence over anything they wrap.
func toRequestError(err error) *RequestError {
	if errors.Is(err, pond.ErrPanic) {
		return taskError(err)
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}

	return transportError(err)
}
