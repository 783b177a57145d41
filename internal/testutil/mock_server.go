// Package testutil provides testing utilities for the batch fetcher.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockServer is a configurable HTTP server for fetcher tests.
type MockServer struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	hangs    chan struct{}
	hangOnce sync.Once

	requestCount int
	pathCounts   map[string]int
}

// NewMockServer creates and starts a new mock server.
func NewMockServer() *MockServer {
	mock := &MockServer{
		handlers:   make(map[string]http.HandlerFunc),
		pathCounts: make(map[string]int),
		hangs:      make(chan struct{}),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the server base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// PathURL returns the absolute URL for path.
func (m *MockServer) PathURL(path string) string {
	return m.server.URL + path
}

// Close releases hanging handlers and shuts the server down.
func (m *MockServer) Close() {
	m.hangOnce.Do(func() { close(m.hangs) })
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockServer) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockServer) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetRedirect makes path answer with a 302 to target.
func (m *MockServer) SetRedirect(path, target string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	})
}

// SetHang makes path accept the request and never answer until the client
// gives up or the server is closed.
func (m *MockServer) SetHang(path string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-m.hangs:
		}
	})
}

// SetTruncatedBody makes path promise a larger Content-Length than it sends,
// so the client fails while reading the body after a 200 status.
func (m *MockServer) SetTruncatedBody(path string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1024")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("short"))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockServer) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// GetPathCount returns the number of requests made to path.
func (m *MockServer) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// defaultHandler echoes the request path as plain text.
func (m *MockServer) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(r.URL.Path))
}

// NewTextResponse creates a 200 OK plain text response.
func NewTextResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "text/plain; charset=utf-8",
		},
	}
}

// NewDelayedResponse creates a 200 OK plain text response sent after delay.
func NewDelayedResponse(body string, delay time.Duration) MockResponse {
	resp := NewTextResponse(body)
	resp.Delay = delay
	return resp
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "not found"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
