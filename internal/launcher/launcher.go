// Package launcher sequences startup: environment validation, model and
// server settings construction, and handoff to a server application factory.
//
// The sequence is strictly linear (Unvalidated -> Validated -> SettingsBuilt)
// with a single retry: model settings are first built with the chatml chat
// format and, if that is rejected, once more without a chat format.
package launcher

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"llamalaunch/internal/config"
	"llamalaunch/internal/settings"
)

//go:generate mockgen -source=launcher.go -destination=mock_launcher_test.go -package=launcher

// App is the application handle returned by a Factory.
type App interface {
	// Run serves until ctx is done or the server fails.
	Run(ctx context.Context) error
	// Close releases the runtimes backing the application.
	Close() error
}

// Factory builds a server application from model and server settings.
type Factory interface {
	CreateApp(ctx context.Context, models []settings.ModelSettings, server settings.ServerSettings) (App, error)
}

// State is the startup phase reached by a Launcher.
type State string

const (
	StateUnvalidated   State = "unvalidated"
	StateValidated     State = "validated"
	StateSettingsBuilt State = "settings_built"
	StateFailed        State = "failed"
)

// Plan is everything needed to hand off to a Factory.
type Plan struct {
	Config config.Resolved         `json:"config"`
	Model  settings.ModelSettings  `json:"model_settings"`
	Server settings.ServerSettings `json:"server_settings"`
}

// Launcher runs the startup sequence.
type Launcher struct {
	build   settings.Builder
	factory Factory
	log     zerolog.Logger
	out     io.Writer
	verbose bool

	mu    sync.Mutex
	state State
}

// Option customizes a Launcher.
type Option func(*Launcher)

// WithBuilder sets the model settings Builder (default settings.NewModelSettings).
func WithBuilder(b settings.Builder) Option { return func(l *Launcher) { l.build = b } }

// WithFactory sets the server application factory used by Launch.
func WithFactory(f Factory) Option { return func(l *Launcher) { l.factory = f } }

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option { return func(l *Launcher) { l.log = log } }

// WithOutput sets where human-readable status lines are written.
func WithOutput(w io.Writer) Option { return func(l *Launcher) { l.out = w } }

// WithVerbose requests verbose runtime output in the model settings.
func WithVerbose(v bool) Option { return func(l *Launcher) { l.verbose = v } }

// New constructs a Launcher.
func New(opts ...Option) *Launcher {
	l := &Launcher{
		build: settings.NewModelSettings,
		log:   zerolog.Nop(),
		out:   io.Discard,
		state: StateUnvalidated,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// State returns the phase reached so far.
func (l *Launcher) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Launcher) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// ValidateEnvironment resolves MODEL_PATH, N_CTX and N_THREADS from environ.
func (l *Launcher) ValidateEnvironment(environ map[string]string) (config.Resolved, error) {
	r, err := config.Resolve(environ)
	if err != nil {
		l.setState(StateFailed)
		return config.Resolved{}, err
	}
	l.log.Debug().Str("model_path", r.ModelPath).Int("n_ctx", r.ContextSize).Int("n_threads", r.ThreadCount).Msg("environment validated")
	l.setState(StateValidated)
	return r, nil
}

// CreateModelSettings builds model settings with the chatml chat format and
// falls back once to no chat format if the builder rejects it. If the
// fallback also fails it returns a construction error and zero settings.
func (l *Launcher) CreateModelSettings(r config.Resolved) (settings.ModelSettings, error) {
	p := settings.ModelParams{
		Model:      r.ModelPath,
		NCtx:       r.ContextSize,
		NThreads:   r.ThreadCount,
		NBatch:     settings.DefaultBatchSize,
		ChatFormat: settings.ChatFormatChatML,
		Verbose:    l.verbose,
	}
	ms, err := l.build(p)
	if err == nil {
		fmt.Fprintf(l.out, "model settings ready: %s (chat_format=%s)\n", ms.Alias, ms.ChatFormat)
		return ms, nil
	}
	l.log.Warn().Err(err).Str("chat_format", p.ChatFormat).Msg("model settings rejected, retrying without chat format")

	p.ChatFormat = ""
	ms, err = l.build(p)
	if err != nil {
		l.setState(StateFailed)
		return settings.ModelSettings{}, config.Construction(fmt.Errorf("create model settings: %w", err))
	}
	fmt.Fprintf(l.out, "model settings ready: %s (without chat_format)\n", ms.Alias)
	return ms, nil
}

// CreateServerSettings returns the fixed server settings.
func CreateServerSettings() settings.ServerSettings {
	return settings.DefaultServerSettings()
}

// Prepare runs validation and settings construction without creating an
// application.
func (l *Launcher) Prepare(environ map[string]string) (Plan, error) {
	r, err := l.ValidateEnvironment(environ)
	if err != nil {
		return Plan{}, err
	}
	ms, err := l.CreateModelSettings(r)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{Config: r, Model: ms, Server: CreateServerSettings()}
	l.setState(StateSettingsBuilt)
	return plan, nil
}

// Launch prepares the settings and hands them to the factory, returning the
// application handle. Factory failures are construction errors.
func (l *Launcher) Launch(ctx context.Context, environ map[string]string) (App, error) {
	if l.factory == nil {
		return nil, config.Construction(fmt.Errorf("no server application factory configured"))
	}
	plan, err := l.Prepare(environ)
	if err != nil {
		return nil, err
	}
	app, err := l.factory.CreateApp(ctx, []settings.ModelSettings{plan.Model}, plan.Server)
	if err != nil {
		l.setState(StateFailed)
		return nil, config.Construction(fmt.Errorf("create app: %w", err))
	}
	l.log.Info().Str("model", plan.Model.Alias).Str("addr", plan.Server.Addr()).Msg("application created")
	return app, nil
}
