// Package testutil provides testing utilities for the pdfcache module.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockDocServer is a configurable document server for testing: it serves
// byte payloads per path and can be told to fail a number of requests
// before succeeding, which is how the retry tests drive the fetcher.
type MockDocServer struct {
	server *httptest.Server

	mu        sync.Mutex
	documents map[string][]byte
	failures  map[string]*failurePlan
	delay     time.Duration

	requestCount      int
	lastRequestHeader http.Header
}

type failurePlan struct {
	remaining int
	status    int
}

// NewMockDocServer creates a running mock document server.
func NewMockDocServer() *MockDocServer {
	mock := &MockDocServer{
		documents: make(map[string][]byte),
		failures:  make(map[string]*failurePlan),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server base URL.
func (m *MockDocServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockDocServer) Close() {
	m.server.Close()
}

// SetDocument configures the payload served for a path.
func (m *MockDocServer) SetDocument(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[path] = data
}

// SetFailures makes the next count requests for path fail with status
// before the configured document (if any) is served.
func (m *MockDocServer) SetFailures(path string, count, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = &failurePlan{remaining: count, status: status}
}

// SetDelay delays every response, for cancellation tests.
func (m *MockDocServer) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// RequestCount returns the number of requests served so far.
func (m *MockDocServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// Reset clears request tracking.
func (m *MockDocServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastRequestHeader = nil
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockDocServer) LastRequestHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequestHeader
}

func (m *MockDocServer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.lastRequestHeader = r.Header.Clone()
	delay := m.delay

	if plan, ok := m.failures[r.URL.Path]; ok && plan.remaining > 0 {
		plan.remaining--
		status := plan.status
		m.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	data, ok := m.documents[r.URL.Path]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
