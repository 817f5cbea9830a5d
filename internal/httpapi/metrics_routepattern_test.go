package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsMiddleware_UsesRoutePattern ensures the metrics middleware labels
// by the chi route pattern instead of the raw URL path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if mrr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", mrr.Code)
	}
	body := mrr.Body.Bytes()
	if !bytes.Contains(body, []byte("llamalaunch_http_requests_total")) || !bytes.Contains(body, []byte("/items/{id}")) {
		preview := body
		if len(preview) > 400 {
			preview = preview[:400]
		}
		t.Fatalf("expected metrics to contain llamalaunch_http_requests_total with '/items/{id}'; got: %q", string(preview))
	}
	if bytes.Contains(body, []byte(`path="/items/42"`)) {
		t.Fatalf("raw path leaked into labels")
	}
}

func TestMetricsEndpointServed(t *testing.T) {
	mux := NewMux(&mockService{}, Options{})
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`llamalaunch_http_requests_total{method="GET",path="/healthz",status="200"}`)) {
		t.Fatalf("healthz request not counted")
	}
}

func TestStatusRecorder_KeepsFirstStatusAndFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	sr.WriteHeader(http.StatusTeapot)
	sr.WriteHeader(http.StatusInternalServerError)
	if sr.status != http.StatusTeapot {
		t.Fatalf("status=%d", sr.status)
	}
	if err := http.NewResponseController(sr).Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !rec.Flushed {
		t.Fatalf("underlying writer not flushed")
	}
}

func TestMetricsMiddleware_UnmatchedPathsShareOneLabel(t *testing.T) {
	mux := NewMux(&mockService{}, Options{})
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(unmatchedRoute, http.MethodGet, "404"))

	for _, p := range []string{"/nope-1", "/nope-2/deeper", "/wp-admin.php"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: status=%d", p, w.Code)
		}
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(unmatchedRoute, http.MethodGet, "404")) - before; got != 3 {
		t.Fatalf("unmatched requests counted %v times, want 3", got)
	}
	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	for _, raw := range []string{"/nope-1", "/nope-2/deeper", "/wp-admin.php"} {
		if bytes.Contains(mrr.Body.Bytes(), []byte(`path="`+raw+`"`)) {
			t.Fatalf("raw path %s leaked into labels", raw)
		}
	}
}

func TestMatchedRoute_InflightLabel(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			got = matchedRoute(req)
			next.ServeHTTP(w, req)
		})
	})
	r.Handle("/v1/*", http.NotFoundHandler())
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {})

	cases := map[string]string{
		"/v1/chat/completions": "/v1/*",
		"/items/42":            "/items/{id}",
		"/elsewhere":           unmatchedRoute,
	}
	for path, want := range cases {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		if got != want {
			t.Fatalf("matchedRoute(%s) = %q, want %q", path, got, want)
		}
	}
}
