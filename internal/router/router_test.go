package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
)

// newTestRouter wires the router with handlers that have no backing
// services. Only paths that are answered before a service is touched can
// be exercised with it.
func newTestRouter(opts Options) http.Handler {
	return New(
		session.NewStore(nil, false),
		nil,
		handlers.NewPublic(nil, nil, nil, nil),
		handlers.NewAdmin(nil, nil, nil, nil, nil, nil, nil),
		handlers.NewAuth(nil, nil, "http://localhost:8080", nil, false),
		opts,
	)
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(Options{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestGlobalMiddleware(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(Options{HSTS: true}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Strict-Transport-Security"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestRouteGuards(t *testing.T) {
	router := newTestRouter(Options{})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/categories", http.StatusUnauthorized},
		{http.MethodPut, "/api/categories/6f1c7b8e-8f0e-4a4f-9b59-0d5e3f3c1a11", http.StatusUnauthorized},
		{http.MethodDelete, "/api/categories/6f1c7b8e-8f0e-4a4f-9b59-0d5e3f3c1a11", http.StatusUnauthorized},
		{http.MethodPost, "/api/posts", http.StatusUnauthorized},
		{http.MethodPut, "/api/posts/hello", http.StatusUnauthorized},
		{http.MethodDelete, "/api/posts/hello", http.StatusUnauthorized},
		{http.MethodPost, "/api/comments", http.StatusUnauthorized},
		{http.MethodPut, "/api/comments/abc", http.StatusUnauthorized},
		{http.MethodDelete, "/api/comments/abc", http.StatusUnauthorized},
		{http.MethodPut, "/api/settings", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/stats", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/users", http.StatusUnauthorized},
		{http.MethodDelete, "/api/admin/users/abc", http.StatusUnauthorized},
		{http.MethodPost, "/api/generate-metadata", http.StatusUnauthorized},
		{http.MethodPost, "/api/upload", http.StatusUnauthorized},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
		{http.MethodPatch, "/api/settings", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestCrossSiteWriteRejected(t *testing.T) {
	router := newTestRouter(Options{TrustedOrigins: []string{"https://blog.example.com"}})

	req := httptest.NewRequest(http.MethodPost, "/api/comments", strings.NewReader("{}"))
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("cross-site: got %d, want 403", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/comments", strings.NewReader("{}"))
	req.Header.Set("Origin", "https://blog.example.com")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("trusted origin: got %d, want 401", rr.Code)
	}
}

func TestAuthRoutes(t *testing.T) {
	router := newTestRouter(Options{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/providers", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("providers: got %d", rr.Code)
	}
	var providers struct {
		Providers []string `json:"providers"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&providers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(providers.Providers) != 0 {
		t.Errorf("providers: got %v, want none", providers.Providers)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"user":null`) {
		t.Errorf("session: got %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unconfigured provider login: got %d, want 404", rr.Code)
	}
}

func TestLimitNil(t *testing.T) {
	called := false
	h := limit(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("nil limiter must pass through")
	}

	rl := middleware.NewRateLimiter(1, time.Minute)
	h = limit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	codes := []int{}
	for range 2 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes: got %v, want [200 429]", codes)
	}
}
