package fetch

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

// failingReader returns an error after the first read.
type failingReader struct {
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("connection reset")
	}
	r.done = true
	return copy(p, "partial"), nil
}

func TestDecodeText(t *testing.T) {
	longJSON := `{"pad":"` + strings.Repeat("a", 1100) + `","name":"café"}`

	tests := []struct {
		name        string
		raw         []byte
		contentType string
		expected    string
	}{
		{
			name:     "empty body",
			raw:      nil,
			expected: "",
		},
		{
			name:        "utf-8 declared",
			raw:         []byte("héllo"),
			contentType: "text/plain; charset=utf-8",
			expected:    "héllo",
		},
		{
			name:        "no charset, valid utf-8",
			raw:         []byte(`{"name": "Zoë"}`),
			contentType: "application/json",
			expected:    `{"name": "Zoë"}`,
		},
		{
			name:        "latin-1 declared",
			raw:         []byte("na\xefve"),
			contentType: "text/html; charset=ISO-8859-1",
			expected:    "naïve",
		},
		{
			name:        "html meta charset",
			raw:         []byte(`<html><head><meta charset="windows-1252"></head><body>caf` + "\xe9" + `</body></html>`),
			contentType: "text/html",
			expected:    `<html><head><meta charset="windows-1252"></head><body>café</body></html>`,
		},
		{
			name:        "no charset, utf-8 after long ascii prefix",
			raw:         []byte(longJSON),
			contentType: "application/json",
			expected:    longJSON,
		},
		{
			name:        "unknown charset label, valid utf-8",
			raw:         []byte("Zoë"),
			contentType: "text/plain; charset=x-made-up",
			expected:    "Zoë",
		},
		{
			name:        "utf-8 bom stripped",
			raw:         []byte("\xef\xbb\xbfhello"),
			contentType: "text/plain",
			expected:    "hello",
		},
		{
			name:        "malformed content type",
			raw:         []byte("plain ascii"),
			contentType: "text/plain; charset",
			expected:    "plain ascii",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeText(tt.raw, tt.contentType)
			if err != nil {
				t.Fatalf("decodeText() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("decodeText() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDeclaredCharset(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"", ""},
		{"application/json", ""},
		{"text/html; charset=UTF-8", "UTF-8"},
		{`text/plain; charset="iso-8859-1"`, "iso-8859-1"},
		{"text/plain; charset", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := declaredCharset(tt.contentType); got != tt.expected {
				t.Errorf("declaredCharset(%q) = %q, want %q", tt.contentType, got, tt.expected)
			}
		})
	}
}

func TestReadText_ReadError(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(&failingReader{}),
	}

	text, err := readText(resp)
	if err == nil {
		t.Fatal("Expected read error")
	}
	if text != "" {
		t.Errorf("text = %q, want empty on error", text)
	}
	if !strings.Contains(err.Error(), "read body") {
		t.Errorf("err = %q, want it to mention the body read", err)
	}
}

func TestDrainAndClose(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(strings.Repeat("x", 4096))}

	drainAndClose(body)

	if !body.closed {
		t.Error("Body should be closed")
	}
	if body.Len() != 0 {
		t.Errorf("%d bytes left unread, want 0", body.Len())
	}
}

type trackingBody struct {
	*strings.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}
