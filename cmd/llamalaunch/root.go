package main

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llamalaunch/internal/config"
	"llamalaunch/internal/llamaserver"
	"llamalaunch/internal/logging"
	"llamalaunch/internal/settings"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile    string
	configPath string
	llamaBin   string
	logLevel   string
	logFormat  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	serve := newServeCmd(g)
	root := &cobra.Command{
		Use:   "llamalaunch",
		Short: "Serve a local GGUF model over an OpenAI-compatible HTTP API",
		Long: `llamalaunch validates MODEL_PATH, N_CTX and N_THREADS, builds model and
server settings and serves the model through llama-server on 0.0.0.0:12000.

Environment:
  MODEL_PATH   path to the model file (required)
  N_CTX        context window in tokens (default 4096)
  N_THREADS    worker threads (default 16)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	pf := root.PersistentFlags()
	pf.StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before validation (missing file is ignored)")
	pf.StringVar(&g.configPath, "config", "", "launcher config file (.yaml, .json, .toml); default "+config.DefaultPath())
	pf.StringVar(&g.llamaBin, "llama-bin", "", "path to llama-server (default: discovered)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	pf.StringVar(&g.logFormat, "log-format", "", "log format: console or json")
	pf.BoolVar(&g.verbose, "verbose", false, "verbose runtime output")

	root.AddCommand(serve, newCheckCmd(g), newModelsCmd())
	return root
}

// load reads the dotenv file and the layered launcher config, and builds the logger.
func (g *globalFlags) load(stderr io.Writer) (config.File, zerolog.Logger, error) {
	if _, err := config.LoadDotEnv(g.envFile); err != nil {
		return config.File{}, zerolog.Nop(), err
	}
	cfg, err := config.LoadLayered(g.configPath, config.File{
		LlamaBin:  g.llamaBin,
		LogLevel:  g.logLevel,
		LogFormat: g.logFormat,
		Verbose:   g.verbose,
	})
	if err != nil {
		return config.File{}, zerolog.Nop(), err
	}
	return cfg, logging.New(stderr, cfg.LogLevel, cfg.LogFormat), nil
}

// probingBuilder defers runtime discovery until settings are first built, so
// environment errors are reported without touching llama-server. When no
// binary is found, or its help cannot be read, settings are built without
// capability checks.
func probingBuilder(ctx context.Context, bin string, log zerolog.Logger) settings.Builder {
	var (
		once  sync.Once
		build settings.Builder = settings.NewModelSettings
	)
	return func(p settings.ModelParams) (settings.ModelSettings, error) {
		once.Do(func() {
			path, err := llamaserver.DiscoverBin(bin)
			if err != nil {
				log.Warn().Err(err).Msg("skipping runtime capability probe")
				return
			}
			caps, err := llamaserver.Probe(ctx, path)
			if err != nil {
				log.Warn().Err(err).Str("bin", path).Msg("runtime capability probe failed")
				return
			}
			log.Debug().Str("bin", path).Bool("chat_template", caps.ChatTemplate).Strs("templates", caps.Templates).Msg("runtime capabilities")
			build = settings.WithCapabilities(caps)
		})
		return build(p)
	}
}
