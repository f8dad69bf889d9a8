package fetcher

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/papervault/pdfcache/internal/testutil"
)

// fastConfig keeps unit tests quick while preserving the linear policy.
func fastConfig() Config {
	return Config{
		MaxAttempts: 3,
		BackoffBase: 20 * time.Millisecond,
		Timeout:     5 * time.Second,
		UserAgent:   "pdfcache-test/1.0",
	}
}

func TestFetch_Success(t *testing.T) {
	server := testutil.NewMockDocServer()
	defer server.Close()

	server.SetDocument("/a.pdf", []byte("%PDF-1.7 payload"))

	f := New(fastConfig())
	data, err := f.Fetch(context.Background(), server.URL()+"/a.pdf")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "%PDF-1.7 payload" {
		t.Errorf("Fetch = %q, want %q", data, "%PDF-1.7 payload")
	}
	if got := server.RequestCount(); got != 1 {
		t.Errorf("RequestCount = %d, want 1", got)
	}
}

func TestFetch_SendsHeaders(t *testing.T) {
	server := testutil.NewMockDocServer()
	defer server.Close()

	server.SetDocument("/a.pdf", []byte("payload"))

	f := New(fastConfig())
	if _, err := f.Fetch(context.Background(), server.URL()+"/a.pdf"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	headers := server.LastRequestHeader()
	if got := headers.Get("User-Agent"); got != "pdfcache-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", got, "pdfcache-test/1.0")
	}
	if got := headers.Get("Accept"); got != "application/pdf" {
		t.Errorf("Accept = %q, want %q", got, "application/pdf")
	}
}

func TestFetch_SuccessAfterRetry(t *testing.T) {
	server := testutil.NewMockDocServer()
	defer server.Close()

	// First two attempts fail, third succeeds.
	server.SetFailures("/a.pdf", 2, http.StatusInternalServerError)
	server.SetDocument("/a.pdf", []byte("payload"))

	cfg := Config{
		MaxAttempts: 3,
		BackoffBase: 500 * time.Millisecond,
		Timeout:     5 * time.Second,
	}

	f := New(cfg)
	start := time.Now()
	data, err := f.Fetch(context.Background(), server.URL()+"/a.pdf")
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Fetch = %q, want %q", data, "payload")
	}
	if got := server.RequestCount(); got != 3 {
		t.Errorf("RequestCount = %d, want 3", got)
	}

	// Linear backoff: 500ms after attempt 1, 1000ms after attempt 2.
	if elapsed < 1500*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 1.5s of backoff", elapsed)
	}
}

func TestFetch_Exhaustion(t *testing.T) {
	server := testutil.NewMockDocServer()
	defer server.Close()

	server.SetFailures("/a.pdf", 99, http.StatusBadGateway)

	f := New(fastConfig())
	_, err := f.Fetch(context.Background(), server.URL()+"/a.pdf")

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}
	if got := server.RequestCount(); got != 3 {
		t.Errorf("RequestCount = %d, want exactly MaxAttempts (3)", got)
	}
}

func TestFetch_ExhaustionWrapsLastCause(t *testing.T) {
	f := New(fastConfig())

	// Unroutable port: every attempt fails with a transport error.
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/doc.pdf")

	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("Expected ErrRetryExhausted, got %v", err)
	}
	// The last underlying transport failure must remain reachable.
	var urlErr interface{ Unwrap() error }
	if !errors.As(err, &urlErr) {
		t.Errorf("Expected exhaustion error to wrap the underlying cause, got %v", err)
	}
}

func TestFetch_CancelledBeforeStart(t *testing.T) {
	server := testutil.NewMockDocServer()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(fastConfig())
	_, err := f.Fetch(ctx, server.URL()+"/a.pdf")

	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled, got %v", err)
	}
	if got := server.RequestCount(); got != 0 {
		t.Errorf("RequestCount = %d, want 0 (no attempt after cancellation)", got)
	}
}

func TestFetch_CancelledDuringBackoff(t *testing.T) {
	server := testutil.NewMockDocServer()
	defer server.Close()

	server.SetFailures("/a.pdf", 99, http.StatusInternalServerError)

	cfg := fastConfig()
	cfg.BackoffBase = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Cancel while the fetcher sleeps between attempts.
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	f := New(cfg)
	_, err := f.Fetch(ctx, server.URL()+"/a.pdf")

	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled, got %v", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("Cancellation must not be reported as retry exhaustion")
	}
	if got := server.RequestCount(); got >= 3 {
		t.Errorf("RequestCount = %d, want fewer than MaxAttempts after cancellation", got)
	}
}

func TestFetch_HTTPErrorStatusIsAttemptFailure(t *testing.T) {
	server := testutil.NewMockDocServer()
	defer server.Close()

	server.SetFailures("/gone.pdf", 99, http.StatusNotFound)

	f := New(fastConfig())
	_, err := f.Fetch(context.Background(), server.URL()+"/gone.pdf")

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted for persistent 404, got %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	f := New(Config{})

	if f.config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", f.config.MaxAttempts)
	}
	if f.config.BackoffBase != 500*time.Millisecond {
		t.Errorf("BackoffBase = %v, want 500ms", f.config.BackoffBase)
	}
	if f.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", f.config.Timeout)
	}
}
