package llamaserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"llamalaunch/internal/common/fsutil"
	"llamalaunch/internal/httpapi"
	"llamalaunch/internal/launcher"
	"llamalaunch/internal/settings"
)

// DefaultReadyTimeout bounds how long a runtime may take to load its model.
const DefaultReadyTimeout = 60 * time.Second

// Factory creates applications backed by llama-server subprocesses. It
// implements launcher.Factory.
type Factory struct {
	// Bin is the llama-server binary; empty means DiscoverBin("").
	Bin string
	// UpstreamHost is the loopback host runtimes bind to.
	UpstreamHost string
	// PortStart/PortEnd optionally restrict runtime ports to a range.
	PortStart, PortEnd int
	// ReadyTimeout bounds each runtime's startup.
	ReadyTimeout time.Duration
	// ExtraArgs are appended to every llama-server command line.
	ExtraArgs []string
	// Preflight loads each model in-process before spawning its runtime.
	// It requires the 'llama' build tag.
	Preflight bool
	Log       zerolog.Logger
	Publisher EventPublisher
	// HTTP configures the front; interruption and ping behavior come from
	// the server settings passed to CreateApp.
	HTTP httpapi.Options
}

var _ launcher.Factory = (*Factory)(nil)

// CreateApp validates the settings, starts one runtime per model and
// returns the application fronting them. If any runtime fails, those
// already started are stopped.
func (f *Factory) CreateApp(ctx context.Context, models []settings.ModelSettings, server settings.ServerSettings) (launcher.App, error) {
	if len(models) == 0 {
		return nil, errors.New("no model settings")
	}
	seen := make(map[string]bool, len(models))
	for _, ms := range models {
		if err := ms.Validate(); err != nil {
			return nil, err
		}
		if seen[ms.Alias] {
			return nil, fmt.Errorf("duplicate model alias %q", ms.Alias)
		}
		seen[ms.Alias] = true
	}
	if server.Port <= 0 || server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port %d", server.Port)
	}
	bin, err := DiscoverBin(f.Bin)
	if err != nil {
		return nil, err
	}
	cfg := spawnConfig{
		bin:          bin,
		host:         f.upstreamHost(),
		portStart:    f.PortStart,
		portEnd:      f.PortEnd,
		readyTimeout: f.readyTimeout(),
		extraArgs:    f.ExtraArgs,
		log:          f.Log,
		publisher:    f.Publisher,
	}

	var procs []*Process
	for _, ms := range models {
		f.Log.Info().
			Str("model", ms.Alias).
			Str("path", ms.Model).
			Str("size", humanize.Bytes(fsutil.FileSize(ms.Model))).
			Str("chat_format", ms.ChatFormat).
			Msg("starting runtime")
		if f.Preflight {
			if err := Preflight(ms); err != nil {
				stopAll(procs)
				return nil, err
			}
		}
		p, err := spawn(ctx, cfg, ms)
		if err != nil {
			stopAll(procs)
			return nil, err
		}
		procs = append(procs, p)
	}
	return newApp(procs, server, f.HTTP, f.Log), nil
}

func stopAll(procs []*Process) {
	for _, p := range procs {
		_ = p.Stop()
	}
}

func (f *Factory) upstreamHost() string {
	if h := strings.TrimSpace(f.UpstreamHost); h != "" {
		return h
	}
	return "127.0.0.1"
}

func (f *Factory) readyTimeout() time.Duration {
	if f.ReadyTimeout > 0 {
		return f.ReadyTimeout
	}
	return DefaultReadyTimeout
}
