// Package testutil provides common testing utilities and helpers.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// MockController simulates a UniFi OS controller: a login endpoint that
// issues a CSRF token and session cookie, plus registered API routes.
// Login and per-path call counts are tracked for assertions.
type MockController struct {
	Server *httptest.Server

	mu          sync.Mutex
	loginCount  int
	loginStatus int
	sessionSeq  int
	apiStatus   map[string]int
	apiCalls    map[string]int
	handlers    map[string]http.HandlerFunc
}

// NewMockController starts a mock controller that accepts logins. The server
// is closed automatically when the test finishes.
func NewMockController(t *testing.T) *MockController {
	t.Helper()

	m := &MockController{
		loginStatus: http.StatusOK,
		apiStatus:   make(map[string]int),
		apiCalls:    make(map[string]int),
		handlers:    make(map[string]http.HandlerFunc),
	}

	m.Server = httptest.NewServer(http.HandlerFunc(m.route))
	t.Cleanup(m.Server.Close)

	return m
}

// URL returns the mock controller's base URL.
func (m *MockController) URL() string {
	return m.Server.URL
}

// Handle registers a handler for an API path.
func (m *MockController) Handle(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// RespondJSON registers a fixed JSON response for an API path.
func (m *MockController) RespondJSON(path string, statusCode int, body string) {
	m.Handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	})
}

// SetLoginStatus makes subsequent login attempts answer with the given
// status. Anything other than 200 is treated as a rejected login.
func (m *MockController) SetLoginStatus(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginStatus = statusCode
}

// LoginCount reports how many login requests the controller has seen.
func (m *MockController) LoginCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCount
}

// CallCount reports how many requests hit the given API path.
func (m *MockController) CallCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apiCalls[path]
}

// TotalAPICalls reports how many non-login requests the controller has seen.
func (m *MockController) TotalAPICalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, n := range m.apiCalls {
		total += n
	}
	return total
}

func (m *MockController) route(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/auth/login" {
		m.handleLogin(w)
		return
	}

	m.mu.Lock()
	m.apiCalls[r.URL.Path]++
	handler, ok := m.handlers[r.URL.Path]
	m.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	handler(w, r)
}

func (m *MockController) handleLogin(w http.ResponseWriter) {
	m.mu.Lock()
	m.loginCount++
	m.sessionSeq++
	status := m.loginStatus
	seq := m.sessionSeq
	m.mu.Unlock()

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"errors":["Invalid username or password"]}`))
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "TOKEN", Value: "session-" + strconv.Itoa(seq)})
	w.Header().Set("X-CSRF-Token", "csrf-"+strconv.Itoa(seq))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{}`))
}
