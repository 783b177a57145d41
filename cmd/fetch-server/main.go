package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/fast-requests/pkg/binding"
	"github.com/Sternrassler/fast-requests/pkg/fetch"
	"github.com/Sternrassler/fast-requests/pkg/logging"
	"github.com/Sternrassler/fast-requests/pkg/metrics"
	"github.com/Sternrassler/fast-requests/pkg/report"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// maxRequestBody bounds the POST /fetch payload.
const maxRequestBody = 1 << 20

type fetchRequest struct {
	URLs []string `json:"urls"`
}

func main() {
	logging.Setup(logging.ConfigFromEnv(os.Getenv))

	// Configuration from environment
	port := getEnv("PORT", "8080")
	redisURL := getEnv("REDIS_URL", "")
	userAgent := getEnv("USER_AGENT", fetch.DefaultUserAgent)

	cfg := fetch.DefaultConfig()
	cfg.UserAgent = userAgent
	fetcher, err := fetch.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create fetcher")
	}

	// Redis is optional; without it reports are not stored.
	var redisClient *redis.Client
	var store *report.Store
	if redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("redis", redisURL).Msg("Failed to connect to Redis")
		}
		log.Info().Str("redis", redisURL).Msg("Connected to Redis")

		store = report.NewStore(redisClient, report.DefaultConfig())
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newMux(fetcher, store, redisClient),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("user_agent", userAgent).
			Bool("reports", store != nil).
			Msg("Starting fetch server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	// In-flight batches may run up to the fetch timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), fetch.DefaultTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// newMux wires all endpoints. store and redisClient may be nil.
func newMux(fetcher *fetch.Fetcher, store *report.Store, redisClient *redis.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(redisClient))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /fetch", fetchHandler(fetcher, store))
	mux.HandleFunc("GET /reports/{id}", reportHandler(store))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, fmt.Sprintf("Redis not ready: %v", err), http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

func fetchHandler(fetcher *fetch.Fetcher, store *report.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fetchRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err := dec.Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
			return
		}

		started := time.Now()
		outcomes := fetcher.FetchAll(req.URLs)
		duration := time.Since(started)

		if store != nil {
			rep := report.FromOutcomes(outcomes, started, duration)
			if err := store.Save(r.Context(), rep); err != nil {
				// The batch result is still returned.
				log.Error().Err(err).Str("report_id", rep.ID).Msg("Failed to store report")
			} else {
				w.Header().Set("X-Report-ID", rep.ID)
			}
		}

		writeJSON(w, http.StatusOK, binding.ConvertAll(outcomes))
	}
}

func reportHandler(store *report.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "Report storage not configured", http.StatusServiceUnavailable)
			return
		}

		rep, err := store.Get(r.Context(), r.PathValue("id"))
		if errors.Is(err, report.ErrNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Report lookup failed: %v", err), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, rep)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
