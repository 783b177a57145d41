package fetch

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for batch fetch operations.
var (
	fetchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_requests_total",
		Help: "Total fetched URLs by result",
	}, []string{"result"})

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_errors_total",
		Help: "Total failed fetches by error class",
	}, []string{"class"})

	fetchRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fetch_request_duration_seconds",
		Help:    "Single URL fetch duration in seconds, body read included",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	fetchInflightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fetch_inflight_requests",
		Help: "Number of requests currently in flight",
	})

	fetchBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetch_batches_total",
		Help: "Total FetchAll calls",
	})

	fetchBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fetch_batch_size",
		Help:    "Number of URLs per FetchAll call",
		Buckets: prometheus.ExponentialBuckets(1, 2, 11),
	})

	fetchBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fetch_batch_duration_seconds",
		Help:    "FetchAll wall-clock duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)

const (
	// DefaultTimeout is the total per-request ceiling.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "fast-requests/0.1.0"
)

// Config holds the fetcher configuration.
type Config struct {
	// Timeout bounds every request: connect, TLS, send, receive and body read.
	// It applies uniformly; there is no per-request override.
	Timeout time.Duration

	// User-Agent header sent with every request.
	UserAgent string
}

// DefaultConfig returns the standard configuration (30s timeout).
func DefaultConfig() Config {
	return Config{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Fetcher issues batches of concurrent GET requests over one shared client.
type Fetcher struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new Fetcher.
func New(cfg Config) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	logger := log.With().Str("component", "batch-fetcher").Logger()

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

var defaultFetcher = sync.OnceValue(func() *Fetcher {
	f, err := New(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("fetch: build default fetcher: %v", err))
	}
	return f
})

// Default returns the process-wide Fetcher, built on first use.
func Default() *Fetcher {
	return defaultFetcher()
}

// FetchAll fetches urls with the process-wide Fetcher.
func FetchAll(urls []string) []Outcome {
	return Default().FetchAll(urls)
}

// FetchAll issues a GET for every URL concurrently and waits for all of them.
// The returned slice has one outcome per URL, in input order.
func (f *Fetcher) FetchAll(urls []string) []Outcome {
	outcomes := make([]Outcome, len(urls))
	if len(urls) == 0 {
		return outcomes
	}

	start := time.Now()
	fetchBatchesTotal.Inc()
	fetchBatchSize.Observe(float64(len(urls)))

	f.logger.Debug().
		Int("total", len(urls)).
		Msg("Starting batch fetch")

	// Sized to the batch so that every request is in flight at once.
	pool := pond.NewResultPool[*Response](len(urls))
	defer pool.StopAndWait()

	// Each task writes only its own slot in pending and durations.
	pending := make([]pond.Result[*Response], len(urls))
	durations := make([]time.Duration, len(urls))
	for i, rawURL := range urls {
		pending[i] = pool.SubmitErr(func() (*Response, error) {
			return f.get(rawURL, &durations[i])
		})
	}

	succeeded := 0
	for i, task := range pending {
		resp, err := task.Wait()
		outcomes[i] = f.outcome(i, urls[i], resp, err, durations[i])
		if outcomes[i].OK() {
			succeeded++
		}
	}

	duration := time.Since(start)
	fetchBatchDuration.Observe(duration.Seconds())

	f.logger.Info().
		Int("total", len(urls)).
		Int("succeeded", succeeded).
		Int("failed", len(urls)-succeeded).
		Dur("duration", duration).
		Msg("Batch fetch complete")

	return outcomes
}

// get performs one GET and reads the whole body. The time spent is stored
// in elapsed even when the request panics.
func (f *Fetcher) get(rawURL string, elapsed *time.Duration) (*Response, error) {
	fetchInflightRequests.Inc()
	startTime := time.Now()
	defer func() {
		*elapsed = time.Since(startTime)
		fetchInflightRequests.Dec()
		fetchRequestDuration.Observe(elapsed.Seconds())
	}()

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, transportError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if resp.StatusCode >= 400 {
		drainAndClose(resp.Body)
		return nil, statusError(resp, finalURL)
	}
	defer resp.Body.Close()

	text, err := readText(resp)
	if err != nil {
		f.logger.Debug().
			Err(err).
			Str("url", finalURL).
			Int("status_code", resp.StatusCode).
			Msg("Body unreadable, using empty text")
		text = ""
	}

	return &Response{
		StatusCode: resp.StatusCode,
		URL:        finalURL,
		Text:       text,
	}, nil
}

// outcome classifies a finished task.
func (f *Fetcher) outcome(index int, rawURL string, resp *Response, err error, d time.Duration) Outcome {
	if err == nil && resp == nil {
		err = taskError(errNoResult)
	}

	if err == nil {
		fetchRequestsTotal.WithLabelValues("success").Inc()
		f.logger.Debug().
			Int("index", index).
			Str("url", rawURL).
			Int("status_code", resp.StatusCode).
			Dur("duration", d).
			Msg("Fetch succeeded")
		return success(rawURL, resp, d)
	}

	reqErr := toRequestError(err)
	fetchRequestsTotal.WithLabelValues("failure").Inc()
	fetchErrorsTotal.WithLabelValues(string(reqErr.Class)).Inc()

	f.logger.Warn().
		Int("index", index).
		Str("url", rawURL).
		Int("status_code", reqErr.StatusCode).
		Str("error_class", string(reqErr.Class)).
		Str("error", reqErr.Message).
		Msg("Fetch failed")

	return failure(rawURL, reqErr, d)
}

// SetHTTPClient sets a custom HTTP client (for testing).
// It must not be called while FetchAll is running.
func (f *Fetcher) SetHTTPClient(client *http.Client) {
	f.httpClient = client
}

// Config returns the configuration the fetcher was built with.
func (f *Fetcher) Config() Config {
	return f.config
}
