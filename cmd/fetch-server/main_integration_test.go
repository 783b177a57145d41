//go:build integration

package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sternrassler/fast-requests/internal/testutil"
	"github.com/Sternrassler/fast-requests/pkg/report"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		redisC.Terminate(ctx)
	}

	return redisClient, cleanup
}

func TestReadyEndpoint(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	handler := readyHandler(redisClient)

	t.Run("ready", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ready", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		resp := w.Result()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}

		if string(body) != "OK" {
			t.Errorf("Expected body 'OK', got %s", string(body))
		}
	})

	t.Run("not_ready_redis_down", func(t *testing.T) {
		// Close Redis to simulate failure
		redisClient.Close()

		req := httptest.NewRequest("GET", "/ready", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		resp := w.Result()

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", resp.StatusCode)
		}
	})
}

func TestFetchAndReport_Integration(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	mock := testutil.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/ok", testutil.NewTextResponse("hello"))
	mock.SetResponse("/boom", testutil.NewServerErrorResponse())

	store := report.NewStore(redisClient, report.DefaultConfig())
	mux := newMux(newTestFetcher(t), store, redisClient)

	payload := `{"urls":["` + mock.PathURL("/ok") + `","` + mock.PathURL("/boom") + `"]}`
	req := httptest.NewRequest("POST", "/fetch", strings.NewReader(payload))
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	id := w.Header().Get("X-Report-ID")
	if id == "" {
		t.Fatal("Expected X-Report-ID header")
	}

	t.Run("report_found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/reports/"+id, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var rep report.Report
		if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
			t.Fatalf("Failed to decode report: %v", err)
		}
		if rep.ID != id || rep.Total != 2 || rep.Succeeded != 1 || rep.Failed != 1 {
			t.Errorf("Unexpected report: %+v", rep)
		}
		if rep.Entries[1].StatusCode != 500 || rep.Entries[1].ErrorClass != "server" {
			t.Errorf("Entries[1] = %+v, want status 500 class server", rep.Entries[1])
		}
	})

	t.Run("report_missing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/reports/unknown", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}
