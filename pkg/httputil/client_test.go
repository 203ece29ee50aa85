package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Miche5967/movie-analyse-recommendation/pkg/config"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:      "development",
		LogLevel: "error",
		Data: config.DataConfig{
			HTTPTimeout:     5 * time.Second,
			FetchRatePerSec: 100,
		},
	}
}

func TestNew(t *testing.T) {
	client := New(testConfig(), logger.Nop())
	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected timeout from config, got %v", client.httpClient.Timeout)
	}

	if client.retryConfig.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", client.retryConfig.MaxRetries)
	}

	if client.limiter == nil {
		t.Error("Expected rate limiter to be set")
	}
}

func TestNewWithTimeout(t *testing.T) {
	client := NewWithTimeout(testConfig(), logger.Nop(), time.Second)

	if client.httpClient.Timeout != time.Second {
		t.Errorf("Expected timeout=1s, got %v", client.httpClient.Timeout)
	}
}

func TestWithRetryAndDisable(t *testing.T) {
	client := New(testConfig(), logger.Nop()).WithRetry(5, 2*time.Second)

	if client.retryConfig.MaxRetries != 5 {
		t.Errorf("Expected MaxRetries=5, got %d", client.retryConfig.MaxRetries)
	}

	client.DisableRetry()
	if client.retryConfig.Enabled {
		t.Error("Expected retry to be disabled")
	}
}

func TestOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		w.Write([]byte("tconst\taverageRating\tnumVotes\n"))
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop())

	body, err := client.Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != "tconst\taverageRating\tnumVotes\n" {
		t.Errorf("Unexpected body %q", data)
	}
}

func TestOpenNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := New(testConfig(), logger.Nop())

	_, err := client.Open(context.Background(), server.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.StatusCode)
	}
}

// steadyServer writes one line every interval, flushing after each
func steadyServer(lines int, interval time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < lines; i++ {
			fmt.Fprintf(w, "tt%07d\t7.0\t100\n", i)
			flusher.Flush()
			select {
			case <-r.Context().Done():
				return
			case <-time.After(interval):
			}
		}
	}))
}

func TestOpenSlowStreamOutlastsTimeout(t *testing.T) {
	// 10 lines at 50ms take ~500ms, well past the 200ms timeout
	server := steadyServer(10, 50*time.Millisecond)
	defer server.Close()

	client := NewWithTimeout(testConfig(), logger.Nop(), 200*time.Millisecond)

	body, err := client.Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("Expected full body, got error: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 10 {
		t.Errorf("Expected 10 lines, got %d", got)
	}
}

func TestOpenIdleTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tconst\taverageRating\tnumVotes\n"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client := NewWithTimeout(testConfig(), logger.Nop(), 100*time.Millisecond)

	body, err := client.Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer body.Close()

	start := time.Now()
	_, err = io.ReadAll(body)
	if !errors.Is(err, ErrIdleTimeout) {
		t.Fatalf("Expected ErrIdleTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Idle stream not cut promptly: %v", elapsed)
	}
}

func TestOpenCancelledContext(t *testing.T) {
	server := steadyServer(100, 20*time.Millisecond)
	defer server.Close()

	client := New(testConfig(), logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	body, err := client.Open(ctx, server.URL)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer body.Close()

	cancel()
	if _, err := io.ReadAll(body); err == nil {
		t.Error("Expected read error after cancellation")
	}
}

func TestRetryOn5xx(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop()).WithRetry(3, 10*time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Request failed after retries: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			if got := IsRetryableError(tt.statusCode); got != tt.want {
				t.Errorf("IsRetryableError(%d) = %v, want %v", tt.statusCode, got, tt.want)
			}
		})
	}
}
