package llamaserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"llamalaunch/internal/common/fsutil"
	"llamalaunch/internal/httpapi"
	"llamalaunch/internal/settings"
	"llamalaunch/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// App serves the HTTP front over a set of running runtimes.
type App struct {
	runID   string
	started time.Time
	server  settings.ServerSettings
	procs   []*Process
	log     zerolog.Logger
	handler http.Handler

	closeOnce sync.Once
	closeErr  error
}

func newApp(procs []*Process, server settings.ServerSettings, opts httpapi.Options, log zerolog.Logger) *App {
	a := &App{
		runID:   uuid.NewString(),
		started: time.Now(),
		server:  server,
		procs:   procs,
		log:     log,
	}
	a.log = log.With().Str("run_id", a.runID).Logger()
	opts.Logger = opts.Logger.With().Str("run_id", a.runID).Logger()
	a.handler = httpapi.NewMux(a, opts.WithServerSettings(server))
	return a
}

// Handler returns the HTTP front.
func (a *App) Handler() http.Handler { return a.handler }

// RunID identifies this run in logs and /status.
func (a *App) RunID() string { return a.runID }

// Run listens on the server address and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.server.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. If a
// runtime exits while serving, Serve shuts down and returns an error wrapping
// ErrRuntimeExited.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", ln.Addr().String()).Int("models", len(a.procs)).Msg("llamalaunch listening")
		errCh <- srv.Serve(ln)
	}()
	a.watch(ctx, cancel)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shCtx); err != nil {
		a.log.Warn().Err(err).Msg("graceful shutdown error")
		_ = srv.Close()
	}
	if cause := context.Cause(ctx); errors.Is(cause, ErrRuntimeExited) {
		return cause
	}
	return nil
}

// watch stops serving when a runtime exits on its own.
func (a *App) watch(ctx context.Context, stop context.CancelCauseFunc) {
	for _, p := range a.procs {
		go func(p *Process) {
			select {
			case <-ctx.Done():
			case <-p.Done():
				if p.State() != StateExited {
					return
				}
				a.log.Error().Err(p.exitErr()).Str("model", p.Model().Alias).Str("stderr_tail", p.StderrTail()).Msg("runtime exited")
				stop(&exitError{model: p.Model().Alias, tail: p.StderrTail(), err: p.exitErr()})
			}
		}(p)
	}
}

// Close stops every runtime. It is safe to call more than once.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error
		for _, p := range a.procs {
			if err := p.Stop(); err != nil {
				errs = append(errs, err)
			}
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

// Upstreams implements httpapi.Service.
func (a *App) Upstreams() []httpapi.Upstream {
	out := make([]httpapi.Upstream, 0, len(a.procs))
	for _, p := range a.procs {
		u, err := url.Parse(p.BaseURL())
		if err != nil {
			continue
		}
		out = append(out, httpapi.Upstream{Model: p.Model().Alias, URL: u, Created: a.started})
	}
	return out
}

// Ready implements httpapi.Service: every runtime must be ready.
func (a *App) Ready() bool {
	for _, p := range a.procs {
		if p.State() != StateReady {
			return false
		}
	}
	return len(a.procs) > 0
}

// Status implements httpapi.Service.
func (a *App) Status() types.StatusResponse {
	now := time.Now()
	st := types.StatusResponse{
		RunID:             a.runID,
		State:             "ready",
		Host:              a.server.Host,
		Port:              a.server.Port,
		InterruptRequests: a.server.InterruptRequests,
		PingEvents:        a.server.PingEvents,
		UptimeSeconds:     int64(now.Sub(a.started).Seconds()),
		ServerTimeUnix:    now.Unix(),
		Models:            make([]types.ModelStatus, 0, len(a.procs)),
	}
	if !a.Ready() {
		st.State = "degraded"
	}
	for _, p := range a.procs {
		ms := p.Model()
		m := types.ModelStatus{
			ID:         ms.Alias,
			Path:       ms.Model,
			State:      p.State(),
			ChatFormat: ms.ChatFormat,
			NCtx:       ms.NCtx,
			NThreads:   ms.NThreads,
			NBatch:     ms.NBatch,
			SizeBytes:  fsutil.FileSize(ms.Model),
			Port:       p.Port(),
			PID:        p.PID(),
		}
		if err := p.exitErr(); err != nil && m.State == StateExited {
			m.LastError = err.Error()
		}
		st.Models = append(st.Models, m)
	}
	return st
}
