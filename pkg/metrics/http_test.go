package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewHTTPMetrics()

	handler := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tracking/abc", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := scrape.Body.String()
	if !strings.Contains(body, "http_requests_total") {
		t.Fatalf("expected request counter in scrape output:\n%s", body)
	}
	if !strings.Contains(body, `status="418"`) {
		t.Fatalf("expected recorded status label in scrape output:\n%s", body)
	}
}

func TestNilMetricsMiddlewareIsPassthrough(t *testing.T) {
	var m *HTTPMetrics

	called := false
	handler := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("wrapped handler should still run")
	}
}
