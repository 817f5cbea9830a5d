// Package httpapi is the HTTP front of a launched server: an
// OpenAI-compatible proxy over the model runtimes plus health, status,
// metrics and API docs endpoints.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llamalaunch/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	// Upstreams lists the runtimes to proxy to. It is read once by NewMux.
	Upstreams() []Upstream
	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the router for svc.
func NewMux(svc Service, opts Options) http.Handler {
	opts = opts.normalized()
	px := newProxy(svc.Upstreams(), opts)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Log-Level"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// Compression would buffer event streams, so it only covers local JSON routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))

		r.Get("/v1/models", modelsHandler(px))
		r.Get("/status", statusHandler(svc))

		MountSwagger(r)
	})

	r.Handle("/v1/*", px)
	for _, np := range nativePaths {
		r.Handle(np, px)
	}

	r.Get("/healthz", healthzHandler)
	r.Get("/readyz", readyzHandler(svc))

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// modelsHandler lists the served models in OpenAI format.
//
// @Summary      List models
// @Description  OpenAI-compatible list of the models served by this instance.
// @Tags         openai
// @Produce      json
// @Success      200  {object}  types.ModelList
// @Router       /v1/models [get]
func modelsHandler(px *proxy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := types.ModelList{Object: "list", Data: []types.ModelCard{}}
		for _, up := range px.models() {
			list.Data = append(list.Data, types.ModelCard{
				ID:      up.Model,
				Object:  "model",
				Created: up.Created.Unix(),
				OwnedBy: "llamalaunch",
			})
		}
		writeJSON(w, list)
	}
}

// statusHandler reports runtime and server state.
//
// @Summary      Server status
// @Tags         ops
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	}
}

// healthzHandler is the liveness probe.
//
// @Summary      Liveness probe
// @Tags         ops
// @Produce      plain
// @Success      200  {string}  string  "ok"
// @Router       /healthz [get]
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyzHandler reports whether every runtime is ready.
//
// @Summary      Readiness probe
// @Tags         ops
// @Produce      plain
// @Success      200  {string}  string  "ready"
// @Failure      503  {string}  string  "loading"
// @Router       /readyz [get]
func readyzHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	}
}
