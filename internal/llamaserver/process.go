package llamaserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"llamalaunch/internal/settings"
)

// Runtime states reported in /status.
const (
	StateStarting = "starting"
	StateReady    = "ready"
	StateExited   = "exited"
	StateStopped  = "stopped"
)

const (
	stderrTailBytes    = 4096
	stopGrace          = 2 * time.Second
	pollInterval       = 100 * time.Millisecond
	healthProbeTimeout = 1 * time.Second
)

// spawnConfig carries what is needed to start one runtime.
type spawnConfig struct {
	bin          string
	host         string
	portStart    int
	portEnd      int
	readyTimeout time.Duration
	extraArgs    []string
	log          zerolog.Logger
	publisher    EventPublisher
}

// Process is one llama-server subprocess serving a single model.
type Process struct {
	model   settings.ModelSettings
	cmd     *exec.Cmd
	host    string
	port    int
	baseURL string
	tail    *tailBuffer
	log     zerolog.Logger
	pub     EventPublisher
	probe   *resty.Client
	done    chan struct{}

	mu      sync.Mutex
	state   string
	waitErr error
}

// buildArgs maps model settings onto llama-server flags.
func buildArgs(ms settings.ModelSettings, host string, port int, extra []string) []string {
	args := []string{
		"-m", ms.Model,
		"--host", host,
		"--port", strconv.Itoa(port),
		"-c", strconv.Itoa(ms.NCtx),
		"-t", strconv.Itoa(ms.NThreads),
		"-b", strconv.Itoa(ms.NBatch),
	}
	if ms.Alias != "" {
		args = append(args, "--alias", ms.Alias)
	}
	if tmpl := ms.ChatTemplate(); tmpl != "" {
		args = append(args, "--chat-template", tmpl)
	}
	if ms.Verbose {
		args = append(args, "--verbose")
	}
	return append(args, extra...)
}

// spawn starts llama-server for ms and waits until it answers health probes,
// exits, or the readiness deadline passes. On failure the process is stopped.
func spawn(ctx context.Context, cfg spawnConfig, ms settings.ModelSettings) (*Process, error) {
	var (
		port int
		err  error
	)
	if cfg.portStart > 0 && cfg.portEnd >= cfg.portStart {
		port, err = pickPortInRange(cfg.host, cfg.portStart, cfg.portEnd)
	} else {
		port, err = pickFreePort(cfg.host)
	}
	if err != nil {
		return nil, err
	}
	pub := cfg.publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	log := cfg.log.With().Str("model", ms.Alias).Logger()

	cmd := exec.Command(cfg.bin, buildArgs(ms, cfg.host, port, cfg.extraArgs)...)
	cmd.Dir = filepath.Dir(ms.Model)
	tail := newTailBuffer(stderrTailBytes)
	cmd.Stdout = &lineLogger{log: log, stream: "stdout"}
	cmd.Stderr = &teeWriter{a: tail, b: &lineLogger{log: log, stream: "stderr"}}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start llama-server: %w", err)
	}

	p := &Process{
		model:   ms,
		cmd:     cmd,
		host:    cfg.host,
		port:    port,
		baseURL: "http://" + net.JoinHostPort(cfg.host, strconv.Itoa(port)),
		tail:    tail,
		log:     log,
		pub:     pub,
		probe:   resty.New().SetTimeout(healthProbeTimeout),
		done:    make(chan struct{}),
		state:   StateStarting,
	}
	go p.wait()

	log.Info().Int("pid", cmd.Process.Pid).Str("host", cfg.host).Int("port", port).Msg("llama-server started")
	pub.Publish(Event{Name: EventSpawnStart, Model: ms.Alias, Fields: map[string]any{"pid": cmd.Process.Pid, "host": cfg.host, "port": port}})

	if err := p.waitReady(ctx, cfg.readyTimeout); err != nil {
		_ = p.Stop()
		return nil, err
	}
	return p, nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()
	p.mu.Lock()
	p.waitErr = err
	if p.state != StateStopped {
		p.state = StateExited
	}
	p.mu.Unlock()
	close(p.done)
}

func (p *Process) waitReady(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			werr := p.exitErr()
			p.log.Error().Err(werr).Int("pid", p.PID()).Msg("llama-server exited before ready")
			p.pub.Publish(Event{Name: EventSpawnExit, Model: p.model.Alias, Fields: map[string]any{"pid": p.PID(), "before_ready": true}})
			reason := "exited before ready"
			if werr != nil {
				reason = "exited early"
			}
			return &spawnError{model: p.model.Alias, reason: reason, tail: p.tail.String(), err: werr}
		case <-ctx.Done():
			p.log.Error().Int("pid", p.PID()).Dur("timeout", timeout).Msg("llama-server not ready in time")
			p.pub.Publish(Event{Name: EventSpawnTimeout, Model: p.model.Alias, Fields: map[string]any{"pid": p.PID()}})
			return &spawnError{model: p.model.Alias, reason: "not ready in time at " + p.baseURL, tail: p.tail.String(), err: ctx.Err()}
		case <-ticker.C:
			if p.healthy(ctx) {
				p.mu.Lock()
				p.state = StateReady
				p.mu.Unlock()
				p.log.Info().Int("pid", p.PID()).Str("url", p.baseURL).Msg("llama-server ready")
				p.pub.Publish(Event{Name: EventSpawnReady, Model: p.model.Alias, Fields: map[string]any{"pid": p.PID(), "url": p.baseURL}})
				return nil
			}
		}
	}
}

// healthy probes /health, falling back to /v1/models for builds without it.
// llama-server answers /health with 503 while the model is loading.
func (p *Process) healthy(ctx context.Context) bool {
	resp, err := p.probe.R().SetContext(ctx).Get(p.baseURL + "/health")
	if err != nil {
		return false
	}
	if resp.IsSuccess() {
		return true
	}
	if resp.StatusCode() != http.StatusNotFound {
		return false
	}
	resp, err = p.probe.R().SetContext(ctx).Get(p.baseURL + "/v1/models")
	return err == nil && resp.IsSuccess()
}

// Stop terminates the subprocess: SIGTERM first, then kill after a grace period.
func (p *Process) Stop() error {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return nil
	}
	p.state = StateStopped
	p.mu.Unlock()

	select {
	case <-p.done:
	default:
		_ = p.cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-p.done:
		case <-time.After(stopGrace):
			_ = p.cmd.Process.Kill()
			<-p.done
		}
	}
	p.log.Info().Int("pid", p.PID()).Msg("llama-server stopped")
	p.pub.Publish(Event{Name: EventSpawnStop, Model: p.model.Alias, Fields: map[string]any{"pid": p.PID()}})
	return nil
}

// Done is closed when the subprocess has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

// Model returns the settings the process was started with.
func (p *Process) Model() settings.ModelSettings { return p.model }

// BaseURL is the loopback URL of the runtime.
func (p *Process) BaseURL() string { return p.baseURL }

// Port is the loopback port of the runtime.
func (p *Process) Port() int { return p.port }

// PID returns the subprocess id.
func (p *Process) PID() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// State returns the lifecycle state.
func (p *Process) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// StderrTail returns the last bytes written to stderr.
func (p *Process) StderrTail() string { return p.tail.String() }

func (p *Process) exitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waitErr
}

func pickPortInRange(host string, start, end int) (int, error) {
	for port := start; port <= end; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			continue
		}
		_ = l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in range %d-%d", start, end)
}

func pickFreePort(host string) (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
