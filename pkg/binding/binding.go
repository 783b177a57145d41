// Package binding adapts fetch outcomes to the two value shapes exposed to
// host environments: Response and RequestError.
//
// Values carry a "type" discriminator when encoded as JSON:
//
//	[
//	  {"type": "response", "status_code": 200, "text": "...", "url": "https://example.com/"},
//	  {"type": "request_error", "status_code": 404, "error": "HTTP status client error ..."}
//	]
package binding

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sternrassler/fast-requests/pkg/fetch"
)

// Type discriminators used in the JSON encoding.
const (
	TypeResponse     = "response"
	TypeRequestError = "request_error"
)

// ErrUnknownType is returned by Decode for values with an unrecognized type.
var ErrUnknownType = errors.New("unknown value type")

// Value is either a Response or a RequestError.
type Value interface {
	Type() string
	isValue()
}

// Response is the host shape of a successful fetch.
type Response struct {
	StatusCode int    `json:"status_code"`
	Text       string `json:"text"`
	URL        string `json:"url"`
}

// RequestError is the host shape of a failed fetch.
type RequestError struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
}

func (Response) Type() string     { return TypeResponse }
func (RequestError) Type() string { return TypeRequestError }

func (Response) isValue()     {}
func (RequestError) isValue() {}

// MarshalJSON adds the type discriminator.
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{TypeResponse, plain(r)})
}

// MarshalJSON adds the type discriminator.
func (e RequestError) MarshalJSON() ([]byte, error) {
	type plain RequestError
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{TypeRequestError, plain(e)})
}

// Convert adapts one outcome.
func Convert(o fetch.Outcome) Value {
	if o.OK() {
		return Response{
			StatusCode: o.Response.StatusCode,
			Text:       o.Response.Text,
			URL:        o.Response.URL,
		}
	}

	if o.Err == nil {
		return RequestError{Error: "empty outcome"}
	}

	return RequestError{
		StatusCode: o.Err.StatusCode,
		Error:      o.Err.Error(),
	}
}

// ConvertAll adapts outcomes, preserving order.
func ConvertAll(outcomes []fetch.Outcome) []Value {
	values := make([]Value, len(outcomes))
	for i, o := range outcomes {
		values[i] = Convert(o)
	}
	return values
}

// envelope holds the union of both shapes while decoding.
type envelope struct {
	Type       string `json:"type"`
	StatusCode int    `json:"status_code"`
	Text       string `json:"text"`
	URL        string `json:"url"`
	Error      string `json:"error"`
}

// Decode parses a JSON array of encoded values.
func Decode(data []byte) ([]Value, error) {
	var envelopes []envelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}

	values := make([]Value, len(envelopes))
	for i, env := range envelopes {
		switch env.Type {
		case TypeResponse:
			values[i] = Response{StatusCode: env.StatusCode, Text: env.Text, URL: env.URL}
		case TypeRequestError:
			values[i] = RequestError{StatusCode: env.StatusCode, Error: env.Error}
		default:
			return nil, fmt.Errorf("%w %q at index %d", ErrUnknownType, env.Type, i)
		}
	}

	return values, nil
}
