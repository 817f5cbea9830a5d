package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Upstream is one runtime reachable through the proxy, addressed by the
// OpenAI "model" field.
type Upstream struct {
	Model   string
	URL     *url.URL
	Created time.Time
}

// completionPaths are the endpoints subject to request interruption.
var completionPaths = map[string]bool{
	"/v1/completions":      true,
	"/v1/chat/completions": true,
	"/completion":          true,
}

// nativePaths are llama-server endpoints outside /v1 that are forwarded as is.
var nativePaths = []string{"/health", "/completion", "/tokenize", "/detokenize"}


type upstreamProxy struct {
	up Upstream
	rp *httputil.ReverseProxy
}

// proxy forwards /v1/* and native runtime requests to the runtime named by the request body.
type proxy struct {
	opts      Options
	order     []string
	upstreams map[string]*upstreamProxy
	intr      *interrupter
}

// routedRequest is the subset of an OpenAI request body used for routing.
type routedRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

func newProxy(ups []Upstream, opts Options) *proxy {
	p := &proxy{opts: opts, upstreams: make(map[string]*upstreamProxy, len(ups)), intr: newInterrupter()}
	errLog := log.New(opts.Logger.With().Str("component", "proxy").Logger(), "", 0)
	for _, up := range ups {
		up := up
		p.order = append(p.order, up.Model)
		p.upstreams[up.Model] = &upstreamProxy{
			up: up,
			rp: &httputil.ReverseProxy{
				Rewrite: func(pr *httputil.ProxyRequest) {
					pr.SetURL(up.URL)
					pr.SetXForwarded()
				},
				FlushInterval: -1,
				ErrorLog:      errLog,
				ErrorHandler:  p.errorHandler(up.Model),
			},
		}
	}
	return p
}

// resolve picks the upstream for model. With a single upstream, or when no
// model is named, the first upstream serves the request.
func (p *proxy) resolve(model string) (*upstreamProxy, bool) {
	if up, ok := p.upstreams[model]; ok {
		return up, true
	}
	if len(p.order) == 0 {
		return nil, false
	}
	if model == "" || len(p.order) == 1 {
		return p.upstreams[p.order[0]], true
	}
	return nil, false
}

// ServeHTTP forwards an OpenAI request to the runtime serving its model.
//
// @Summary      OpenAI-compatible completions
// @Description  Proxied to the llama-server runtime selected by the "model" field.
// @Description  Streaming responses are server-sent events.
// @Tags         openai
// @Accept       json
// @Produce      json
// @Produce      text/event-stream
// @Success      200
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Failure      409  {object}  types.ErrorResponse
// @Failure      413  {object}  types.ErrorResponse
// @Failure      502  {object}  types.ErrorResponse
// @Router       /v1/completions [post]
// @Router       /v1/chat/completions [post]
// @Router       /v1/embeddings [post]
func (p *proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lvl := requestLogLevel(r, p.opts.LogLevel)

	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, p.opts.MaxBodyBytes))
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeJSONError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		body = b
	}
	var rr routedRequest
	if len(bytes.TrimSpace(body)) > 0 && isJSON(r.Header.Get("Content-Type")) {
		if err := json.Unmarshal(body, &rr); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	up, ok := p.resolve(rr.Model)
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("unknown model %q", rr.Model))
		return
	}
	model := up.up.Model

	ctx, cancel := joinContexts(p.opts.BaseContext, r.Context())
	defer cancel()
	if p.opts.InterruptRequests && completionPaths[r.URL.Path] {
		interrupted := false
		if rr.Stream {
			var release func()
			ctx, release, interrupted = p.intr.register(ctx, model)
			defer release()
		} else {
			interrupted = p.intr.interrupt(model)
		}
		if interrupted {
			interruptsTotal.WithLabelValues(model).Inc()
			if lvl >= LevelInfo {
				p.event(r, p.opts.Logger.Info()).Str("model", model).Msg("interrupted in-flight stream")
			}
		}
	}

	out := r.Clone(ctx)
	if body == nil {
		out.Body = http.NoBody
	} else {
		out.Body = io.NopCloser(bytes.NewReader(body))
	}
	out.ContentLength = int64(len(body))
	out.TransferEncoding = nil

	sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	var writer http.ResponseWriter = sr
	if lvl >= LevelDebug {
		writer = &bodyLogWriter{ResponseWriter: writer, lw: &loggingLineWriter{log: p.opts.Logger}}
	}
	if p.opts.PingEvents {
		pw := newPingWriter(writer, p.opts.PingInterval)
		defer pw.Close()
		writer = pw
	}

	if lvl >= LevelInfo {
		p.event(r, p.opts.Logger.Info()).Str("path", r.URL.Path).Str("model", model).Bool("stream", rr.Stream).Msg("proxy start")
	}
	up.rp.ServeHTTP(writer, out)
	switch {
	case lvl >= LevelInfo:
		p.event(r, p.opts.Logger.Info()).Int("status", sr.status).Dur("dur", time.Since(start)).Str("model", model).Msg("proxy end")
	case lvl >= LevelError && sr.status >= http.StatusInternalServerError:
		p.event(r, p.opts.Logger.Error()).Int("status", sr.status).Dur("dur", time.Since(start)).Str("model", model).Msg("proxy end")
	}
}

func (p *proxy) errorHandler(model string) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(context.Cause(r.Context()), ErrInterrupted) {
			writeJSONError(w, http.StatusConflict, ErrInterrupted.Error())
			return
		}
		if r.Context().Err() != nil {
			// Client went away or the server is shutting down.
			return
		}
		upstreamErrorsTotal.WithLabelValues(model).Inc()
		p.opts.Logger.Error().Err(err).Str("model", model).Str("path", r.URL.Path).Msg("upstream request failed")
		writeJSONError(w, http.StatusBadGateway, "upstream unavailable: "+err.Error())
	}
}

func (p *proxy) event(r *http.Request, ev *zerolog.Event) *zerolog.Event {
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	return ev
}

// models lists the upstreams in registration order.
func (p *proxy) models() []Upstream {
	out := make([]Upstream, 0, len(p.order))
	for _, m := range p.order {
		out = append(out, p.upstreams[m].up)
	}
	return out
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}
