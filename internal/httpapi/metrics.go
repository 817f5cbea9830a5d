package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llamalaunch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llamalaunch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "llamalaunch",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
		[]string{"path"},
	)

	interruptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llamalaunch",
			Subsystem: "proxy",
			Name:      "interrupts_total",
			Help:      "Streaming completions interrupted by a newer request",
		},
		[]string{"model"},
	)

	pingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "llamalaunch",
			Subsystem: "proxy",
			Name:      "pings_total",
			Help:      "SSE ping comments written to idle event streams",
		},
	)

	upstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llamalaunch",
			Subsystem: "proxy",
			Name:      "upstream_errors_total",
			Help:      "Requests that failed before the runtime answered",
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight, interruptsTotal, pingsTotal, upstreamErrorsTotal)
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.status = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	sr.wroteHeader = true
	return sr.ResponseWriter.Write(p)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// unmatchedRoute labels requests that match no route, so arbitrary paths
// cannot create new series.
const unmatchedRoute = "other"

// MetricsMiddleware instruments requests for Prometheus
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		// The route pattern is only known once chi has routed the request.
		defer func() {
			route := routeLabel(r)
			status := strconv.Itoa(sr.status)
			httpRequestsTotal.WithLabelValues(route, r.Method, status).Inc()
			httpRequestDuration.WithLabelValues(route, r.Method, status).Observe(time.Since(start).Seconds())
		}()
		inflight := httpInflight.WithLabelValues(matchedRoute(r))
		inflight.Inc()
		defer inflight.Dec()
		next.ServeHTTP(sr, r)
	})
}

// routeLabel returns the chi route pattern of a routed request, or
// unmatchedRoute when none matched.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// matchedRoute resolves the route pattern before routing has happened.
func matchedRoute(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil || rc.Routes == nil {
		return unmatchedRoute
	}
	tctx := chi.NewRouteContext()
	if !rc.Routes.Match(tctx, r.Method, r.URL.Path) {
		return unmatchedRoute
	}
	if p := tctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}
